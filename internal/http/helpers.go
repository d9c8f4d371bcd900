package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/metrics"
)

// --- Error Response Helpers ---

// respondError resolves err, logs it with its original cause and writes the
// error envelope. The cause never reaches the client.
func respondError(c *gin.Context, err error) {
	p := apperr.Resolve(err)

	var event *zerolog.Event
	if p.Status >= http.StatusInternalServerError {
		event = log.Error()
	} else {
		event = log.Warn()
	}
	event.
		Err(err).
		Str("request_id", c.GetString(ContextKeyRequestID)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", p.Status).
		Str("code", p.Code).
		Msg("request failed")

	metrics.ErrorResponsesTotal.WithLabelValues(p.Code).Inc()

	c.AbortWithStatusJSON(p.Status, p.Envelope())
}

// --- Success Response Helpers ---

// respondSuccess wraps data in the success envelope. status defaults to 200.
func respondSuccess(c *gin.Context, data any, message string, status ...int) {
	c.JSON(apperr.Success(data, message, status...))
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	respondSuccess(c, data, "", http.StatusCreated)
}
