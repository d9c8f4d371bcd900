package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
)

// ContextKeySubject holds the authenticated token subject.
const ContextKeySubject = "auth_subject"

const CodeUnauthorized = "UNAUTHORIZED"

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	tokens *TokenManager
	mode   config.AuthMode
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(tokens *TokenManager, mode config.AuthMode) *Middleware {
	return &Middleware{tokens: tokens, mode: mode}
}

// Enabled reports whether mutating routes require a token.
func (m *Middleware) Enabled() bool {
	return m.mode == config.AuthModeToken
}

// RequireToken rejects requests without a valid bearer token. It lets
// everything through when auth is disabled.
func (m *Middleware) RequireToken() gin.HandlerFunc {
	if !m.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="bookshelf"`)
			_ = c.Error(apperr.New(http.StatusUnauthorized, CodeUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="bookshelf", error="invalid_token"`)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// GetSubject returns the authenticated subject, or "" when the request
// was not authenticated.
func GetSubject(c *gin.Context) string {
	return c.GetString(ContextKeySubject)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
