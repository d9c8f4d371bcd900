package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/validation"
)

const CodeInvalidCredentials = "INVALID_CREDENTIALS"

// adminSubject is the only principal; there are no user accounts.
const adminSubject = "admin"

type TokenRequest struct {
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenController exchanges the admin password for an access token.
type TokenController struct {
	tokens       *TokenManager
	passwordHash string
	limiter      *RateLimiter
}

func NewTokenController(tokens *TokenManager, passwordHash string, limiter *RateLimiter) *TokenController {
	return &TokenController{tokens: tokens, passwordHash: passwordHash, limiter: limiter}
}

// Issue handles POST /auth/token.
func (tc *TokenController) Issue(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperr.Validation(validation.Issue("password", "password is required")).Wrap(err))
		return
	}
	if err := validation.Struct(req); err != nil {
		_ = c.Error(err)
		return
	}

	ip := c.ClientIP()
	if err := CheckPassword(req.Password, tc.passwordHash); err != nil {
		if !errors.Is(err, ErrInvalidPassword) {
			log.Error().Err(err).Msg("admin password hash is unusable")
		}
		if tc.limiter != nil {
			if locked, _ := tc.limiter.RecordFailure(ip); locked {
				log.Warn().Str("ip", ip).Msg("token requests locked out after repeated failures")
			}
		}
		_ = c.Error(apperr.New(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials"))
		return
	}
	if tc.limiter != nil {
		tc.limiter.RecordSuccess(ip)
	}

	token, expiresAt, err := tc.tokens.Issue(adminSubject)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(apperr.Success(TokenResponse{Token: token, ExpiresAt: expiresAt}, ""))
}
