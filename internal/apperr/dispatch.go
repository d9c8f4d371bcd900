package apperr

import (
	"net/http"
	"strings"
)

// Machine-readable codes returned to clients. These are part of the public
// contract; the mobile client branches on them.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeDuplicate    = "DUPLICATE_ENTRY"
	CodeNotFound     = "NOT_FOUND"
	CodeDatabase     = "DATABASE_ERROR"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Problem is the resolved form of a failure: what the client sees.
type Problem struct {
	Status  int
	Code    string
	Message string
	Details any
}

// Envelope wraps the problem for the response body.
func (p Problem) Envelope() ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error: ErrorBody{
			Message: p.Message,
			Code:    p.Code,
			Details: p.Details,
		},
	}
}

// FieldIssue is the wire form of a validation issue.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldDetails identifies the offending field of a persistence failure.
type FieldDetails struct {
	Field string `json:"field,omitempty"`
}

// dispatchOrder is the precedence used when one failure carries several
// tags, e.g. an application error wrapping a database failure.
var dispatchOrder = []Kind{KindApplication, KindValidation, KindPersistence, KindToken}

// Resolve maps any error to a Problem. It never fails: nil, untagged and
// malformed errors all resolve to a generic internal error whose message
// reveals nothing about the cause.
func Resolve(err error) Problem {
	tagged := collect(err)
	for _, kind := range dispatchOrder {
		for _, e := range tagged {
			if e.Kind == kind {
				return resolveTagged(e)
			}
		}
	}
	return internal()
}

func resolveTagged(e *Error) Problem {
	switch e.Kind {
	case KindApplication:
		return resolveApplication(e)
	case KindValidation:
		return resolveValidation(e)
	case KindPersistence:
		return resolvePersistence(e)
	case KindToken:
		return resolveToken(e)
	}
	return internal()
}

func resolveApplication(e *Error) Problem {
	p := Problem{Status: e.Status, Code: e.Code, Message: e.Message, Details: e.Details}
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Code == "" {
		p.Code = CodeInternal
	}
	if p.Message == "" {
		p.Message = http.StatusText(p.Status)
	}
	return p
}

func resolveValidation(e *Error) Problem {
	details := make([]FieldIssue, 0, len(e.Issues))
	for _, issue := range e.Issues {
		details = append(details, FieldIssue{
			Field:   strings.Join(issue.Path, "."),
			Message: issue.Message,
		})
	}
	return Problem{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: "Validation failed",
		Details: details,
	}
}

func resolvePersistence(e *Error) Problem {
	switch e.DBCode {
	case UniqueViolation:
		field := e.Field
		label := field
		if label == "" {
			label = "Field"
		}
		return Problem{
			Status:  http.StatusConflict,
			Code:    CodeDuplicate,
			Message: label + " already exists",
			Details: FieldDetails{Field: field},
		}
	case RecordNotFound:
		return Problem{
			Status:  http.StatusNotFound,
			Code:    CodeNotFound,
			Message: notFoundMessage(e.Entity),
		}
	case ForeignKeyViolation:
		p := Problem{
			Status:  http.StatusNotFound,
			Code:    CodeNotFound,
			Message: notFoundMessage(e.Entity),
		}
		if e.Field != "" {
			p.Details = FieldDetails{Field: e.Field}
		}
		return p
	default:
		return Problem{
			Status:  http.StatusInternalServerError,
			Code:    CodeDatabase,
			Message: "Database error",
		}
	}
}

func notFoundMessage(entity string) string {
	if entity == "" {
		return "Record not found"
	}
	return entity + " not found"
}

func resolveToken(e *Error) Problem {
	if e.Reason == TokenExpired {
		return Problem{Status: http.StatusUnauthorized, Code: CodeTokenExpired, Message: "Token expired"}
	}
	return Problem{Status: http.StatusUnauthorized, Code: CodeInvalidToken, Message: "Invalid token"}
}

func internal() Problem {
	return Problem{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
	}
}

// collect returns every *Error in the chain of err, outermost first,
// following both single and joined unwraps.
func collect(err error) []*Error {
	var found []*Error
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if tagged, ok := err.(*Error); ok {
			if tagged == nil {
				return
			}
			found = append(found, tagged)
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return found
}
