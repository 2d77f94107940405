package models

import (
	"fmt"
	"html"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a stored upload; Filename is the storage key used for release.
type Image struct {
	URL      string `bson:"url" json:"url"`
	Filename string `bson:"filename" json:"filename"`
}

// Thumbnail returns the 200px-wide rendition URL for hosts that transform on /upload/.
// Other URLs are returned unchanged.
func (i Image) Thumbnail() string {
	return strings.Replace(i.URL, "/upload/", "/upload/w_200/", 1)
}

// Geometry is a GeoJSON point, coordinates ordered [lng, lat].
type Geometry struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Point builds a GeoJSON point geometry.
func Point(lng, lat float64) *Geometry {
	return &Geometry{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Campground is the listing resource. Author is fixed at creation.
type Campground struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Price       float64              `bson:"price" json:"price"`
	Description string               `bson:"description" json:"description"`
	Location    string               `bson:"location" json:"location"`
	Geometry    *Geometry            `bson:"geometry,omitempty" json:"geometry,omitempty"`
	Images      []Image              `bson:"images" json:"images"`
	Author      primitive.ObjectID   `bson:"author" json:"author"`
	Reviews     []primitive.ObjectID `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// OwnedBy reports whether userID (hex) is the campground's author.
func (c *Campground) OwnedBy(userID string) bool {
	return userID != "" && c.Author.Hex() == userID
}

// PopUpMarkup is the escaped HTML shown in a map marker popup.
func (c *Campground) PopUpMarkup() string {
	desc := []rune(c.Description)
	if len(desc) > 20 {
		desc = desc[:20]
	}
	return fmt.Sprintf(`<strong><a href="/campgrounds/%s">%s</a></strong><p>%s...</p>`,
		c.ID.Hex(), html.EscapeString(c.Title), html.EscapeString(string(desc)))
}

// MapPoint is the data the show-page map needs.
type MapPoint struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Coordinates []float64 `json:"coordinates"`
}

// MapPoint returns nil when the campground has no geometry.
func (c *Campground) MapPoint() *MapPoint {
	if c.Geometry == nil {
		return nil
	}
	return &MapPoint{Title: c.Title, Location: c.Location, Coordinates: c.Geometry.Coordinates}
}

// Feature is one GeoJSON feature of the cluster map.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   *Geometry         `json:"geometry"`
	Properties map[string]string `json:"properties"`
}

// FeatureCollection is the cluster map source.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection maps geocoded campgrounds to GeoJSON features.
func NewFeatureCollection(cs []Campground) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(cs))}
	for i := range cs {
		c := &cs[i]
		if c.Geometry == nil {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: c.Geometry,
			Properties: map[string]string{
				"id":          c.ID.Hex(),
				"popUpMarkup": c.PopUpMarkup(),
			},
		})
	}
	return fc
}

// CampgroundDetail is a campground with its author and reviews resolved.
type CampgroundDetail struct {
	Campground
	AuthorName string
	Reviews    []AuthoredReview
}
