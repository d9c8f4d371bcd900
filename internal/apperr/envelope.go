package apperr

import "net/http"

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// SuccessEnvelope is the body of every successful response.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// Success wraps data in a success envelope. The returned status is the
// first element of status, or 200 when none is given.
func Success(data any, message string, status ...int) (int, SuccessEnvelope) {
	code := http.StatusOK
	if len(status) > 0 && status[0] != 0 {
		code = status[0]
	}
	return code, SuccessEnvelope{Success: true, Data: data, Message: message}
}
