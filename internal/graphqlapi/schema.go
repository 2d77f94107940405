// Package graphqlapi exposes campgrounds and their reviews as a read-only GraphQL schema.
package graphqlapi

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"yelpcamp/internal/apperr"
	"yelpcamp/internal/models"
	"yelpcamp/internal/telemetry"
)

// Source is the read side of the campground service.
type Source interface {
	List(ctx context.Context) ([]models.Campground, error)
	Detail(ctx context.Context, id string) (*models.CampgroundDetail, error)
	AuthorNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type resolver struct {
	src Source
	log telemetry.Logger
}

// NewSchema builds the Query root: campgrounds and campground(id).
func NewSchema(src Source, log telemetry.Logger) (graphql.Schema, error) {
	res := &resolver{src: src, log: log}

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"username": &graphql.Field{Type: graphql.String},
		},
	})
	imageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: graphql.Fields{
			"url":       &graphql.Field{Type: graphql.String},
			"filename":  &graphql.Field{Type: graphql.String},
			"thumbnail": &graphql.Field{Type: graphql.String},
		},
	})
	geometryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Geometry",
		Fields: graphql.Fields{
			"type":        &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: graphql.NewList(graphql.Float)},
		},
	})
	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"rating": &graphql.Field{Type: graphql.Int},
			"body":   &graphql.Field{Type: graphql.String},
			"author": &graphql.Field{Type: userType},
		},
	})
	campgroundType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Campground",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.Float},
			"location":    &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"author":      &graphql.Field{Type: userType},
			"images":      &graphql.Field{Type: graphql.NewList(imageType)},
			"geometry":    &graphql.Field{Type: geometryType},
			"reviews": &graphql.Field{
				Type:    graphql.NewList(reviewType),
				Resolve: res.reviews,
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"campgrounds": &graphql.Field{
				Type:    graphql.NewList(campgroundType),
				Resolve: res.campgrounds,
			},
			"campground": &graphql.Field{
				Type: campgroundType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: res.campground,
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func (res *resolver) campgrounds(p graphql.ResolveParams) (any, error) {
	cs, err := res.src.List(p.Context)
	if err != nil {
		return nil, res.public(err)
	}
	ids := make([]primitive.ObjectID, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.Author)
	}
	names, err := res.src.AuthorNames(p.Context, ids)
	if err != nil {
		return nil, res.public(err)
	}
	out := make([]map[string]any, 0, len(cs))
	for i := range cs {
		out = append(out, campgroundFields(&cs[i], names[cs[i].Author]))
	}
	return out, nil
}

func (res *resolver) campground(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	d, err := res.src.Detail(p.Context, id)
	if err != nil {
		return nil, res.public(err)
	}
	m := campgroundFields(&d.Campground, d.AuthorName)
	m["reviews"] = reviewFields(d.Reviews)
	return m, nil
}

// reviews is only loaded when a listing query asks for it.
func (res *resolver) reviews(p graphql.ResolveParams) (any, error) {
	m, ok := p.Source.(map[string]any)
	if !ok {
		return nil, nil
	}
	if rs, ok := m["reviews"]; ok {
		return rs, nil
	}
	id, _ := m["id"].(string)
	d, err := res.src.Detail(p.Context, id)
	if err != nil {
		return nil, res.public(err)
	}
	return reviewFields(d.Reviews), nil
}

// public keeps internal failure details out of the response.
func (res *resolver) public(err error) error {
	if apperr.StatusOf(err) >= 500 {
		res.log.Error("graphql resolve failed", "err", err)
	}
	return errors.New(apperr.MessageOf(err))
}

func campgroundFields(c *models.Campground, author string) map[string]any {
	images := make([]map[string]any, 0, len(c.Images))
	for _, img := range c.Images {
		images = append(images, map[string]any{
			"url":       img.URL,
			"filename":  img.Filename,
			"thumbnail": img.Thumbnail(),
		})
	}
	m := map[string]any{
		"id":          c.ID.Hex(),
		"title":       c.Title,
		"price":       c.Price,
		"location":    c.Location,
		"description": c.Description,
		"author":      map[string]any{"username": author},
		"images":      images,
	}
	if c.Geometry != nil {
		m["geometry"] = map[string]any{"type": c.Geometry.Type, "coordinates": c.Geometry.Coordinates}
	}
	return m
}

func reviewFields(rs []models.AuthoredReview) []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, map[string]any{
			"id":     r.ID.Hex(),
			"rating": r.Rating,
			"body":   r.Body,
			"author": map[string]any{"username": r.AuthorName},
		})
	}
	return out
}
