package graphqlapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/graphql-go/handler"

	"yelpcamp/internal/middleware"
	"yelpcamp/internal/telemetry"
)

// Config bounds what a single POST /graphql may ask for.
type Config struct {
	AllowIntrospection bool
	MaxBodyBytes       int64
	MaxQueryLength     int
	MaxOperationName   int
	MaxDepth           int
	// MaxCost caps fields fetched, counting list fields at their listFanout.
	MaxCost int
}

// DefaultConfig allows a full campgrounds listing with reviews and nothing much larger.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:     1 << 20,
		MaxQueryLength:   4096,
		MaxOperationName: 64,
		MaxDepth:         8,
		MaxCost:          10000,
	}
}

type request struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName,omitempty"`
	Variables     json.RawMessage `json:"variables,omitempty"`
}

// rejection is a guard failure with the status it is answered with.
type rejection struct {
	status int
	msg    string
}

func (r rejection) Error() string { return r.msg }

func badRequest(msg string) error { return rejection{http.StatusBadRequest, msg} }

// NewHandler serves the read-only campground schema. Queries are parsed and
// measured before execution.
func NewHandler(cfg Config, src Source, log telemetry.Logger) (http.Handler, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	schema, err := NewSchema(src, log)
	if err != nil {
		return nil, err
	}
	exec := handler.New(&handler.Config{Schema: &schema})

	serve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := cfg.admit(body); err != nil {
			var rej rejection
			if !errors.As(err, &rej) {
				rej = rejection{http.StatusBadRequest, err.Error()}
			}
			log.Debug("graphql query rejected", "reason", rej.msg, "request_id", middleware.GetRequestID(r.Context()))
			http.Error(w, rej.msg, rej.status)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		exec.ServeHTTP(w, r)
	})

	return middleware.BodyLimit(cfg.MaxBodyBytes)(middleware.RequireJSON(serve)), nil
}

// admit decodes the envelope strictly and checks the query against the limits.
func (cfg Config) admit(body []byte) error {
	var req request
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return badRequest("invalid request: " + err.Error())
	}
	if dec.More() {
		return badRequest("unexpected extra input")
	}
	if req.Query == "" {
		return badRequest("query required")
	}
	if cfg.MaxQueryLength > 0 && len(req.Query) > cfg.MaxQueryLength {
		return badRequest("query too large")
	}
	if cfg.MaxOperationName > 0 && len(req.OperationName) > cfg.MaxOperationName {
		return badRequest("operation name too long")
	}

	shape, err := inspect(req.Query, req.OperationName)
	if err != nil {
		return badRequest(err.Error())
	}
	switch {
	case shape.introspection && !cfg.AllowIntrospection:
		return rejection{http.StatusForbidden, errIntrospection.Error()}
	case cfg.MaxDepth > 0 && shape.depth > cfg.MaxDepth:
		return badRequest("query depth exceeded")
	case cfg.MaxCost > 0 && shape.cost > cfg.MaxCost:
		return badRequest("query cost exceeded")
	}
	return nil
}
