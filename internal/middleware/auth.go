package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// TokenVerifier turns a bearer token into the actor it was issued to.
type TokenVerifier interface {
	Verify(token string) (domain.Actor, error)
}

// Authenticate returns a gin middleware that requires a valid bearer token on
// every request except those whose path is listed in skip. The verified actor
// is stored in the request context and attached to log records.
func Authenticate(verifier TokenVerifier, skip ...string) gin.HandlerFunc {
	if verifier == nil {
		panic("middleware.Authenticate: verifier must not be nil")
	}
	return func(c *gin.Context) {
		if slices.Contains(skip, c.Request.URL.Path) {
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "missing bearer token", nil))
			c.Abort()
			return
		}
		actor, err := verifier.Verify(token)
		if err != nil {
			pkg.Error(c, err)
			c.Abort()
			return
		}

		ctx := domain.WithActor(c.Request.Context(), actor)
		ctx = logger.WithContextAttrs(ctx, slog.String("actor_id", actor.ID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole returns a gin middleware that rejects actors below role.
// The role is checked against authz on every request, so demotions apply
// without waiting for token expiry.
func RequireRole(authz domain.Authorizer, role domain.Role) gin.HandlerFunc {
	if authz == nil {
		panic("middleware.RequireRole: authorizer must not be nil")
	}
	return func(c *gin.Context) {
		actor, _ := domain.ActorFromContext(c.Request.Context())
		if err := domain.RequireRole(c.Request.Context(), authz, actor, role); err != nil {
			pkg.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func actorID(c *gin.Context) (string, bool) {
	actor, ok := domain.ActorFromContext(c.Request.Context())
	return actor.ID, ok
}
