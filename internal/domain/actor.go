package domain

import (
	"context"
	"io"
)

// Role is an admin account's permission level.
type Role string

// Roles in ascending order of privilege.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// rank returns the privilege level of r, or -1 for an unknown role.
func (r Role) rank() int {
	switch r {
	case RoleViewer:
		return 0
	case RoleEditor:
		return 1
	case RoleAdmin:
		return 2
	}
	return -1
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.rank() >= 0
}

// Covers reports whether a holder of r may act where required is needed.
func (r Role) Covers(required Role) bool {
	return r.Valid() && required.Valid() && r.rank() >= required.rank()
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored in ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok && actor.ID != ""
}

// Authorizer decides whether an actor holds at least the required role.
type Authorizer interface {
	Authorize(ctx context.Context, actorID string, required Role) (bool, error)
}

// RequireRole checks that actor is authenticated and holds at least role.
func RequireRole(ctx context.Context, authz Authorizer, actor Actor, role Role) error {
	if actor.ID == "" {
		return ErrUnauthorized
	}
	ok, err := authz.Authorize(ctx, actor.ID, role)
	if err != nil {
		return err
	}
	if !ok {
		return NewAppError(CodeForbidden, string(role)+" role required", nil)
	}
	return nil
}

// BlobRef identifies an uploaded blob.
type BlobRef struct {
	URL        string
	ProviderID string
}

// BlobStore uploads and deletes binary objects.
type BlobStore interface {
	Upload(ctx context.Context, data io.Reader, contentType string) (BlobRef, error)
	Delete(ctx context.Context, providerID string) error
}

// Mailer delivers a plain message to one recipient.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
