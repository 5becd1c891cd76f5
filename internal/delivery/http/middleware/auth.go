package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/infrastructure/identity"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

type AuthMiddleware struct {
	verifier identity.Verifier
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier identity.Verifier, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, logger: log}
}

// RequireAuth verifies the bearer token and stores the identity on the context.
// Failures abort with a plain-text 401 before any handler runs.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.String(http.StatusUnauthorized, "Missing bearer token")
			c.Abort()
			return
		}

		id, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidToken) {
				m.logger.Warn("token verification failed", zap.Error(err))
			}
			c.String(http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", domain.ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}

// IdentityFrom returns the identity set by RequireAuth.
func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*domain.Identity)
	return id, ok && id != nil
}

// SetIdentity is used by tests and by handlers mounted behind other authenticators.
func SetIdentity(c *gin.Context, id *domain.Identity) {
	c.Set(identityKey, id)
}
