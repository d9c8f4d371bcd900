// Package apperr defines the tagged error values shared by every layer of the
// service and the single dispatcher that turns them into HTTP envelopes.
//
// Lower layers never pick HTTP status codes themselves (except for
// application errors, which carry their own). Instead they translate the
// failures of their libraries into an *Error tagged with one of the Kind
// values below:
//
//	database   -> KindPersistence (gorm / sqlite constraint failures)
//	validation -> KindValidation  (validator field errors)
//	auth       -> KindToken       (jwt parse failures)
//	anyone     -> KindApplication (explicit status + code)
//
// Resolve then maps the tag to a Problem. See dispatch.go.
package apperr

import (
	"fmt"
	"strings"
)

// Kind tags the family an *Error belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindApplication
	KindValidation
	KindPersistence
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindToken:
		return "token"
	default:
		return "unknown"
	}
}

// PersistenceCode classifies a persistence failure.
type PersistenceCode int

const (
	PersistenceOther PersistenceCode = iota
	UniqueViolation
	RecordNotFound
	ForeignKeyViolation
)

func (c PersistenceCode) String() string {
	switch c {
	case UniqueViolation:
		return "unique_violation"
	case RecordNotFound:
		return "record_not_found"
	case ForeignKeyViolation:
		return "foreign_key_violation"
	default:
		return "other"
	}
}

// TokenReason tells a malformed token from an expired one.
type TokenReason int

const (
	TokenMalformed TokenReason = iota
	TokenExpired
)

// Issue is a single field-level validation failure. Path holds the field
// path segments below the validated value, e.g. ["author", "email"].
type Issue struct {
	Path    []string
	Message string
}

// Error is a tagged failure. Which fields are meaningful depends on Kind.
type Error struct {
	Kind Kind

	// KindApplication
	Status  int
	Code    string
	Message string
	Details any

	// KindValidation
	Issues []Issue

	// KindPersistence
	DBCode PersistenceCode
	Field  string
	Entity string

	// KindToken
	Reason TokenReason

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case KindApplication:
		fmt.Fprintf(&b, " %s: %s", e.Code, e.Message)
	case KindValidation:
		for i, issue := range e.Issues {
			if i == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s %s", strings.Join(issue.Path, "."), issue.Message)
		}
	case KindPersistence:
		fmt.Fprintf(&b, " %s", e.DBCode)
		if e.Entity != "" {
			fmt.Fprintf(&b, " entity=%s", e.Entity)
		}
		if e.Field != "" {
			fmt.Fprintf(&b, " field=%s", e.Field)
		}
	case KindToken:
		if e.Reason == TokenExpired {
			b.WriteString(" expired")
		} else {
			b.WriteString(" malformed")
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an application error that is passed to the client verbatim.
func New(status int, code, message string) *Error {
	return &Error{Kind: KindApplication, Status: status, Code: code, Message: message}
}

// WithDetails attaches structured diagnostics to an application error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Wrap records the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Validation returns a validation error holding the given issues in order.
func Validation(issues ...Issue) *Error {
	return &Error{Kind: KindValidation, Issues: issues}
}

// Persistence returns a persistence error for the given code.
func Persistence(code PersistenceCode, err error) *Error {
	return &Error{Kind: KindPersistence, DBCode: code, Err: err}
}

// OnField names the column or request field a persistence error refers to.
func (e *Error) OnField(field string) *Error {
	e.Field = field
	return e
}

// OfEntity names the record type a persistence error refers to.
func (e *Error) OfEntity(entity string) *Error {
	e.Entity = entity
	return e
}

// Token returns a token error.
func Token(reason TokenReason, err error) *Error {
	return &Error{Kind: KindToken, Reason: reason, Err: err}
}

// NotFound is a convenience for a missing record of the given entity.
func NotFound(entity string) *Error {
	return Persistence(RecordNotFound, nil).OfEntity(entity)
}
