package validation

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yelpcamp/internal/apperr"
)

func campgroundForm() url.Values {
	return url.Values{
		"campground[title]":       {"Misty Bay"},
		"campground[price]":       {"12.5"},
		"campground[location]":    {"Austin, Texas"},
		"campground[description]": {"Quiet spot by the water"},
	}
}

func TestCampgroundValid(t *testing.T) {
	v := NewValidator()
	in, out := v.Campground(campgroundForm())
	require.IsType(t, Valid{}, out)
	assert.Equal(t, "Misty Bay", in.Title)
	require.NotNil(t, in.Price)
	assert.Equal(t, 12.5, *in.Price)
}

func TestCampgroundAggregatesEveryField(t *testing.T) {
	v := NewValidator()
	form := campgroundForm()
	form.Set("campground[title]", "")
	form.Set("campground[price]", "-1")
	_, out := v.Campground(form)
	inv, ok := out.(Invalid)
	require.True(t, ok)
	assert.Equal(t,
		`"campground.title" is required,"campground.price" must be greater than or equal to 0`,
		inv.Message())
}

func TestCampgroundRejectsHTML(t *testing.T) {
	v := NewValidator()
	form := campgroundForm()
	form.Set("campground[title]", `<script>alert(1)</script>`)
	_, out := v.Campground(form)
	inv, ok := out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"campground.title" must not include HTML!`, inv.Message())
}

func TestCampgroundAllowsAmpersand(t *testing.T) {
	v := NewValidator()
	form := campgroundForm()
	form.Set("campground[title]", "Rock & River")
	_, out := v.Campground(form)
	assert.IsType(t, Valid{}, out)
}

func TestCampgroundPriceNotANumber(t *testing.T) {
	v := NewValidator()
	form := campgroundForm()
	form.Set("campground[price]", "cheap")
	_, out := v.Campground(form)
	inv, ok := out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"campground.price" must be a number`, inv.Message())
}

func TestCampgroundUnknownAndMissingRoot(t *testing.T) {
	v := NewValidator()
	form := campgroundForm()
	form.Set("campground[owner]", "me")
	_, out := v.Campground(form)
	inv, ok := out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"campground.owner" is not allowed`, inv.Message())

	_, out = v.Campground(url.Values{"title": {"x"}})
	inv, ok = out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"campground" is required`, inv.Message())
}

func TestReviewRatingBound(t *testing.T) {
	v := NewValidator()
	_, out := v.Review(url.Values{"review[rating]": {"6"}, "review[body]": {"x"}})
	inv, ok := out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"review.rating" must be less than or equal to 5`, inv.Message())

	err := inv.Err()
	assert.Equal(t, 400, apperr.StatusOf(err))
	assert.Contains(t, apperr.MessageOf(err), "less than or equal to 5")

	in, out := v.Review(url.Values{"review[rating]": {"5"}, "review[body]": {"Great"}})
	require.IsType(t, Valid{}, out)
	assert.Equal(t, 5, *in.Rating)
}

func TestRegisterAndLogin(t *testing.T) {
	v := NewValidator()
	_, out := v.Register(url.Values{"username": {"tim"}, "email": {"nope"}, "password": {"pw"}})
	inv, ok := out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"email" must be a valid email`, inv.Message())

	_, out = v.Login(url.Values{"username": {"tim"}})
	inv, ok = out.(Invalid)
	require.True(t, ok)
	assert.Equal(t, `"password" is required`, inv.Message())
}

func TestDeleteImages(t *testing.T) {
	got := DeleteImages(url.Values{"deleteImages[]": {"b", "a", "b"}, "other": {"c"}})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestLocalRedirect(t *testing.T) {
	cases := map[string]string{
		"/campgrounds/new":        "/campgrounds/new",
		"":                        "/campgrounds",
		"//evil.example":          "/campgrounds",
		"https://evil.example/":   "/campgrounds",
		`/\evil.example`:          "/campgrounds",
		"/campgrounds?page=2#top": "/campgrounds?page=2#top",
	}
	for in, want := range cases {
		assert.Equal(t, want, LocalRedirect(in, "/campgrounds"), in)
	}
}

func TestSanitizePath(t *testing.T) {
	p, err := SanitizePath("/srv/uploads", "YelpCamp/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/srv/uploads/YelpCamp/a.png", p)

	p, err = SanitizePath("/srv/uploads", "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "/srv/uploads/etc/passwd", p)
}

func TestParseMultipartFallsBackToURLEncoded(t *testing.T) {
	r, _ := http.NewRequest(http.MethodPost, "/campgrounds", nil)
	r.PostForm = url.Values{"a": {"b"}}
	require.NoError(t, ParseMultipart(r, 1<<20, 1))
	assert.Equal(t, "b", r.PostForm.Get("a"))
}
