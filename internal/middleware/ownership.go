package middleware

import (
	"net/http"

	"yelpcamp/internal/security"
)

// OwnerLookup returns the owner id of the resource a request targets.
type OwnerLookup func(r *http.Request) (string, error)

// Ownership guards a resource by comparing its owner with the request identity.
type Ownership struct {
	// Lookup loads the owner; its error goes to Fail.
	Lookup OwnerLookup
	// Deny answers a mismatch, typically with a flash and redirect.
	Deny func(w http.ResponseWriter, r *http.Request)
	Fail func(w http.ResponseWriter, r *http.Request, err error)
}

// RequireOwnership forwards only when the identity owns the resource.
func RequireOwnership(o Ownership) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := o.Lookup(r)
			if err != nil {
				o.Fail(w, r, err)
				return
			}
			id, ok := security.FromContext(r.Context())
			if !ok || id.ID != owner {
				o.Deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
