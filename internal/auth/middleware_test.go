package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// renderErrors stands in for the HTTP layer's error middleware.
func renderErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			p := apperr.Resolve(c.Errors.Last().Err)
			c.JSON(p.Status, p.Envelope())
		}
	}
}

func setupRouter(mode config.AuthMode, tokens *TokenManager) *gin.Engine {
	mw := NewMiddleware(tokens, mode)

	router := gin.New()
	router.Use(renderErrors())
	router.POST("/books", mw.RequireToken(), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"subject": GetSubject(c)})
	})
	return router
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperr.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	router := setupRouter(config.AuthModeNone, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/books", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestMiddleware_MissingToken(t *testing.T) {
	router := setupRouter(config.AuthModeToken, NewTokenManager("secret", time.Hour))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/books", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, CodeUnauthorized, errorCode(t, rr))
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
}

func TestMiddleware_InvalidToken(t *testing.T) {
	router := setupRouter(config.AuthModeToken, NewTokenManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apperr.CodeInvalidToken, errorCode(t, rr))
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	tokens := NewTokenManager("secret", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := tokens.Issue("admin")
	require.NoError(t, err)
	tokens.now = time.Now

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	setupRouter(config.AuthModeToken, tokens).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apperr.CodeTokenExpired, errorCode(t, rr))
}

func TestMiddleware_ValidToken(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	token, _, err := tokens.Issue("admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()
	setupRouter(config.AuthModeToken, tokens).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"subject":"admin"}`, rr.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"Bearer abc", "abc", true},
		{"  BEARER   abc  ", "abc", true},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}
