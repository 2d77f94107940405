package security

import "context"

// Outcome is the result of the identity guard: Authenticated or Unauthenticated.
type Outcome interface {
	outcome()
}

// Authenticated carries the identity bound to the request.
type Authenticated struct {
	Identity Identity
}

// Unauthenticated explains why no identity is bound.
type Unauthenticated struct {
	Reason string
}

func (Authenticated) outcome()   {}
func (Unauthenticated) outcome() {}

const ReasonNoSession = "no identity bound to session"

// Authenticate decides whether the request context carries an identity.
// It never redirects; callers choose the response.
func Authenticate(ctx context.Context) Outcome {
	id, ok := FromContext(ctx)
	if !ok {
		return Unauthenticated{Reason: ReasonNoSession}
	}
	return Authenticated{Identity: id}
}
