package graphqlapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/models"
	"yelpcamp/internal/telemetry"
)

type fakeSource struct {
	camps   []models.Campground
	names   map[primitive.ObjectID]string
	reviews map[string][]models.AuthoredReview
}

func (f *fakeSource) List(context.Context) ([]models.Campground, error) { return f.camps, nil }

func (f *fakeSource) Detail(_ context.Context, id string) (*models.CampgroundDetail, error) {
	for _, c := range f.camps {
		if c.ID.Hex() == id {
			return &models.CampgroundDetail{Campground: c, AuthorName: f.names[c.Author], Reviews: f.reviews[id]}, nil
		}
	}
	return nil, apperr.NotFound("Cannot find that campground!")
}

func (f *fakeSource) AuthorNames(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	return f.names, nil
}

func newSource() *fakeSource {
	author := primitive.NewObjectID()
	camp := models.Campground{
		ID:       primitive.NewObjectID(),
		Title:    "Pines",
		Price:    15,
		Location: "Texas",
		Author:   author,
		Geometry: models.Point(-99.9, 31.9),
		Images:   []models.Image{{URL: "https://res.example.com/upload/a.jpg", Filename: "YelpCamp/a"}},
	}
	return &fakeSource{
		camps: []models.Campground{camp},
		names: map[primitive.ObjectID]string{author: "tim"},
		reviews: map[string][]models.AuthoredReview{
			camp.ID.Hex(): {{Review: models.Review{ID: primitive.NewObjectID(), Rating: 5, Body: "great"}, AuthorName: "sam"}},
		},
	}
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, gqlResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out gqlResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func newHandler(t *testing.T, src Source, cfg Config) http.Handler {
	t.Helper()
	h, err := NewHandler(cfg, src, telemetry.NewNop())
	require.NoError(t, err)
	return h
}

func TestCampgroundsQuery(t *testing.T) {
	h := newHandler(t, newSource(), DefaultConfig())
	rec, out := post(t, h, `{"query":"{ campgrounds { title author { username } images { thumbnail } geometry { coordinates } } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, out.Errors)

	var camps []struct {
		Title  string `json:"title"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
		Images []struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"images"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	require.NoError(t, json.Unmarshal(out.Data["campgrounds"], &camps))
	require.Len(t, camps, 1)
	assert.Equal(t, "Pines", camps[0].Title)
	assert.Equal(t, "tim", camps[0].Author.Username)
	assert.Equal(t, "https://res.example.com/upload/w_200/a.jpg", camps[0].Images[0].Thumbnail)
	assert.Equal(t, []float64{-99.9, 31.9}, camps[0].Geometry.Coordinates)
}

func TestCampgroundQueryWithReviews(t *testing.T) {
	src := newSource()
	h := newHandler(t, src, DefaultConfig())
	body := `{"query":"query One($id: ID!) { campground(id: $id) { title reviews { rating body author { username } } } }","variables":{"id":"` + src.camps[0].ID.Hex() + `"}}`
	rec, out := post(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, out.Errors)
	assert.Contains(t, string(out.Data["campground"]), `"author":{"username":"sam"}`)
	assert.Contains(t, string(out.Data["campground"]), `"rating":5`)
}

func TestCampgroundQueryNotFound(t *testing.T) {
	h := newHandler(t, newSource(), DefaultConfig())
	rec, out := post(t, h, `{"query":"{ campground(id: \"nope\") { title } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Cannot find that campground!", out.Errors[0].Message)
}

func TestGuards(t *testing.T) {
	h := newHandler(t, newSource(), DefaultConfig())

	rec, _ := post(t, h, `{"query":"{ __schema { types { name } } }"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = post(t, h, `{"query":"{ a { b { c { d { e { f { g { h { i } } } } } } } } }"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, h, `{"query":"{ campgrounds { title } }","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("query=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestIntrospectionWhenAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowIntrospection = true
	h := newHandler(t, newSource(), cfg)
	rec, out := post(t, h, `{"query":"{ __type(name: \"Campground\") { name } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(out.Data["__type"]), "Campground")
}

func TestInspectMeasuresListFanout(t *testing.T) {
	shape, err := inspect(`{ campgrounds { title reviews { rating author { username } } } }`, "")
	require.NoError(t, err)
	assert.Equal(t, 4, shape.depth)
	// campgrounds 1 + 50*(title 1 + reviews 1 + 20*(rating 1 + author 1 + username 1))
	assert.Equal(t, 1+50*(2+20*3), shape.cost)
	assert.False(t, shape.introspection)

	shape, err = inspect(`query A { campgrounds { ...Card } } fragment Card on Campground { title images { url } }`, "A")
	require.NoError(t, err)
	assert.Equal(t, 3, shape.depth)
	assert.Equal(t, 1+50*(1+1+5*1), shape.cost)

	shape, err = inspect(`{ __typename campgrounds { title } }`, "")
	require.NoError(t, err)
	assert.False(t, shape.introspection)
}

func TestGuardsRejectShapes(t *testing.T) {
	h := newHandler(t, newSource(), DefaultConfig())
	wide := `{ a: campgrounds { reviews { author { username } } } b: campgrounds { reviews { author { username } } } c: campgrounds { reviews { author { username } } } d: campgrounds { reviews { author { username } } } e: campgrounds { reviews { author { username } } } }`
	body, err := json.Marshal(map[string]string{"query": wide})
	require.NoError(t, err)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"cost", string(body), http.StatusBadRequest},
		{"syntax", `{"query":"{ campgrounds { title }"}`, http.StatusBadRequest},
		{"mutation", `{"query":"mutation { campgrounds { title } }"}`, http.StatusBadRequest},
		{"fragment cycle", `{"query":"{ campgrounds { ...A } } fragment A on Campground { ...B } fragment B on Campground { ...A }"}`, http.StatusBadRequest},
		{"unknown operation", `{"query":"query One { campgrounds { title } }","operationName":"Two"}`, http.StatusBadRequest},
		{"nested introspection", `{"query":"{ campgrounds { __type(name: \"User\") { name } } }"}`, http.StatusForbidden},
		{"named operation", `{"query":"query One { campgrounds { title } }","operationName":"One"}`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := post(t, h, tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}
