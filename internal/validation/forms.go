package validation

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// CampgroundInput is the campground object of a create or edit form.
type CampgroundInput struct {
	Title       string   `label:"campground.title" validate:"required,nohtml"`
	Price       *float64 `label:"campground.price" validate:"required,gte=0"`
	Location    string   `label:"campground.location" validate:"required,nohtml"`
	Description string   `label:"campground.description" validate:"required,nohtml"`
	// Filenames of images to remove on edit.
	DeleteImages []string `label:"deleteImages" validate:"omitempty,dive,required,nohtml"`
}

// ReviewInput is the review object of a review form.
type ReviewInput struct {
	Rating *int   `label:"review.rating" validate:"required,gte=1,lte=5"`
	Body   string `label:"review.body" validate:"required,nohtml"`
}

type RegisterInput struct {
	Username string `label:"username" validate:"required,max=64,nohtml"`
	Email    string `label:"email" validate:"required,email"`
	Password string `label:"password" validate:"required"`
}

type LoginInput struct {
	Username string `label:"username" validate:"required"`
	Password string `label:"password" validate:"required"`
}

var (
	campgroundKeys = []string{"title", "price", "location", "description"}
	reviewKeys     = []string{"rating", "body"}
)

// Campground decodes and validates campground[...] fields plus deleteImages.
func (v *Validator) Campground(form url.Values) (CampgroundInput, Outcome) {
	var in CampgroundInput
	obj, decodeErrs := nested(form, "campground", campgroundKeys)
	if obj == nil {
		return in, Invalid{Fields: decodeErrs}
	}
	in.Title = obj["title"]
	in.Location = obj["location"]
	in.Description = obj["description"]
	if raw := strings.TrimSpace(obj["price"]); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			decodeErrs = append(decodeErrs, numberError("campground.price"))
		} else {
			in.Price = &p
		}
	}
	in.DeleteImages = DeleteImages(form)
	return in, merge(decodeErrs, v.Validate(in))
}

// Review decodes and validates review[...] fields.
func (v *Validator) Review(form url.Values) (ReviewInput, Outcome) {
	var in ReviewInput
	obj, decodeErrs := nested(form, "review", reviewKeys)
	if obj == nil {
		return in, Invalid{Fields: decodeErrs}
	}
	in.Body = obj["body"]
	if raw := strings.TrimSpace(obj["rating"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			decodeErrs = append(decodeErrs, FieldError{
				Field:   "review.rating",
				Message: fmt.Sprintf("%q must be an integer", "review.rating"),
			})
		} else {
			in.Rating = &n
		}
	}
	return in, merge(decodeErrs, v.Validate(in))
}

func (v *Validator) Register(form url.Values) (RegisterInput, Outcome) {
	in := RegisterInput{
		Username: strings.TrimSpace(form.Get("username")),
		Email:    strings.TrimSpace(form.Get("email")),
		Password: form.Get("password"),
	}
	return in, v.Validate(in)
}

func (v *Validator) Login(form url.Values) (LoginInput, Outcome) {
	in := LoginInput{
		Username: strings.TrimSpace(form.Get("username")),
		Password: form.Get("password"),
	}
	return in, v.Validate(in)
}

// DeleteImages collects the deleteImages[] checkboxes of an edit form.
func DeleteImages(form url.Values) []string {
	seen := map[string]struct{}{}
	var out []string
	for key, vals := range form {
		if key != "deleteImages" && key != "deleteImages[]" && !strings.HasPrefix(key, "deleteImages[") {
			continue
		}
		for _, v := range vals {
			if _, dup := seen[v]; dup || v == "" {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// nested extracts root[key] fields. A nil map means the root object is absent.
// Subkeys outside allowed are reported as not allowed.
func nested(form url.Values, root string, allowed []string) (map[string]string, []FieldError) {
	prefix := root + "["
	var obj map[string]string
	var errs []FieldError
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, "]") {
			continue
		}
		if obj == nil {
			obj = map[string]string{}
		}
		sub := k[len(prefix) : len(k)-1]
		if !contains(allowed, sub) {
			label := root + "." + sub
			errs = append(errs, FieldError{Field: label, Message: fmt.Sprintf("%q is not allowed", label)})
			continue
		}
		obj[sub] = form.Get(k)
	}
	if obj == nil {
		return nil, []FieldError{{Field: root, Message: fmt.Sprintf("%q is required", root)}}
	}
	return obj, errs
}

func numberError(label string) FieldError {
	return FieldError{Field: label, Message: fmt.Sprintf("%q must be a number", label)}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
