// Package auth guards the mutating catalog routes and sets response
// security headers.
//
// It supports two modes:
//   - "none": every route is open (default)
//   - "token": POST, PUT and DELETE on the catalog require a bearer JWT
//
// # Configuration
//
//	AUTH_MODE=token
//	AUTH_TOKEN_SECRET=<random string>          # HMAC key for signing tokens
//	AUTH_ADMIN_PASSWORD_HASH=<bcrypt hash>     # see `bookshelf hash-password`
//	AUTH_TOKEN_EXPIRY=24h
//
// # Usage
//
//	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiry)
//	mw := auth.NewMiddleware(tokens, cfg.Auth.Mode)
//	books.POST("", mw.RequireToken(), controller.Create)
//
// A client obtains a token from POST /auth/token with the admin password.
//
// Middleware in this package reports failures with c.Error and aborts; the
// HTTP layer's error middleware renders the envelope.
package auth
