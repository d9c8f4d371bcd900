package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/validation"
)

const (
	CodeInvalidBody          = "INVALID_BODY"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
)

type bodyKind int

const (
	bodyForm bodyKind = iota
	bodyMultipart
	bodyJSON
)

// bodyKindOf picks the decoder for a request once, from its media type.
// A request without a content type is treated as an empty form.
func bodyKindOf(r *http.Request) (bodyKind, error) {
	header := r.Header.Get("Content-Type")
	if header == "" {
		return bodyForm, nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return 0, apperr.New(http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "Unsupported content type").Wrap(err)
	}
	switch mediaType {
	case gin.MIMEJSON:
		return bodyJSON, nil
	case gin.MIMEMultipartPOSTForm:
		return bodyMultipart, nil
	case gin.MIMEPOSTForm:
		return bodyForm, nil
	default:
		return 0, apperr.New(http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "Unsupported content type: "+mediaType)
	}
}

// formValues gives access to the fields of a parsed form body.
type formValues struct {
	c *gin.Context
}

func parseForm(c *gin.Context, kind bodyKind) (formValues, error) {
	var err error
	if kind == bodyMultipart {
		_, err = c.MultipartForm()
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		return formValues{}, bodyError(err)
	}
	return formValues{c: c}, nil
}

func (f formValues) text(name string) string {
	return strings.TrimSpace(f.c.PostForm(name))
}

func (f formValues) optional(name string) *string {
	return optionalText(f.c.PostForm(name))
}

func (f formValues) flag(name string) bool {
	return f.c.PostForm(name) == "true"
}

func (f formValues) file(name string) (*multipart.FileHeader, error) {
	if f.c.Request.MultipartForm == nil {
		return nil, nil
	}
	file, err := f.c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, bodyError(err)
	}
	return file, nil
}

func optionalText(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large").Wrap(err)
	}
	return apperr.New(http.StatusBadRequest, CodeInvalidBody, "Malformed request body").Wrap(err)
}

func decodeJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return bodyError(err)
	}
	return nil
}

// parseYear reads a published year given as a JSON number, a JSON string or
// a form value. Empty input yields 0 so that the required check reports it.
func parseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return 0, nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal([]byte(raw), &text); err != nil {
			return 0, invalidYear(err)
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			return 0, nil
		}
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidYear(err)
	}
	return year, nil
}

func invalidYear(cause error) *apperr.Error {
	return apperr.Validation(validation.Issue("publishedYear", "publishedYear must be a whole number")).Wrap(cause)
}

// withYearIssue reports an unparsable year together with everything else
// wrong with cmd, in field order. cmd carries a zero year, so the struct
// check always yields a publishedYear issue to swap out.
func withYearIssue(cmd catalog.BookCommand, yearErr error) error {
	var year *apperr.Error
	if !errors.As(yearErr, &year) {
		return yearErr
	}
	var others *apperr.Error
	if !errors.As(validation.Struct(cmd), &others) {
		return yearErr
	}

	issues := make([]apperr.Issue, 0, len(others.Issues))
	for _, issue := range others.Issues {
		if strings.Join(issue.Path, ".") == "publishedYear" {
			issues = append(issues, year.Issues...)
			continue
		}
		issues = append(issues, issue)
	}
	return apperr.Validation(issues...).Wrap(year.Unwrap())
}

// --- Authors ---

type authorJSON struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Bio              *string `json:"bio"`
	KeepCurrentPhoto *bool   `json:"keepCurrentPhoto"`
}

// decodeAuthor reads an author command from a form or JSON body. JSON
// bodies never carry a photo; on update they keep the current one unless
// keepCurrentPhoto is false.
func decodeAuthor(c *gin.Context, update bool) (catalog.AuthorCommand, error) {
	kind, err := bodyKindOf(c.Request)
	if err != nil {
		return catalog.AuthorCommand{}, err
	}

	if kind == bodyJSON {
		var body authorJSON
		if err := decodeJSON(c, &body); err != nil {
			return catalog.AuthorCommand{}, err
		}
		var bio *string
		if body.Bio != nil {
			bio = optionalText(*body.Bio)
		}
		return catalog.AuthorCommand{
			Name:             strings.TrimSpace(body.Name),
			Email:            strings.TrimSpace(body.Email),
			Bio:              bio,
			KeepCurrentPhoto: keepCurrent(body.KeepCurrentPhoto, update),
		}, nil
	}

	form, err := parseForm(c, kind)
	if err != nil {
		return catalog.AuthorCommand{}, err
	}
	photo, err := form.file("photo")
	if err != nil {
		return catalog.AuthorCommand{}, err
	}
	return catalog.AuthorCommand{
		Name:             form.text("name"),
		Email:            form.text("email"),
		Bio:              form.optional("bio"),
		Photo:            photo,
		KeepCurrentPhoto: form.flag("keepCurrentPhoto"),
	}, nil
}

// --- Books ---

type bookJSON struct {
	Title            string          `json:"title"`
	ISBN             string          `json:"isbn"`
	PublishedYear    json.RawMessage `json:"publishedYear"`
	Description      *string         `json:"description"`
	AuthorID         string          `json:"authorId"`
	KeepCurrentCover *bool           `json:"keepCurrentCover"`
}

// decodeBook reads a book command from a form or JSON body. Both decoders
// produce the same command; JSON bodies never carry a cover and on update
// keep the current one unless keepCurrentCover is false.
func decodeBook(c *gin.Context, update bool) (catalog.BookCommand, error) {
	kind, err := bodyKindOf(c.Request)
	if err != nil {
		return catalog.BookCommand{}, err
	}

	if kind == bodyJSON {
		var body bookJSON
		if err := decodeJSON(c, &body); err != nil {
			return catalog.BookCommand{}, err
		}
		year, yearErr := parseYear(string(bytes.TrimSpace(body.PublishedYear)))
		var description *string
		if body.Description != nil {
			description = optionalText(*body.Description)
		}
		cmd := catalog.BookCommand{
			Title:            strings.TrimSpace(body.Title),
			ISBN:             strings.TrimSpace(body.ISBN),
			PublishedYear:    year,
			Description:      description,
			AuthorID:         strings.TrimSpace(body.AuthorID),
			KeepCurrentCover: keepCurrent(body.KeepCurrentCover, update),
		}
		if yearErr != nil {
			return catalog.BookCommand{}, withYearIssue(cmd, yearErr)
		}
		return cmd, nil
	}

	form, err := parseForm(c, kind)
	if err != nil {
		return catalog.BookCommand{}, err
	}
	year, yearErr := parseYear(form.text("publishedYear"))
	cover, err := form.file("coverImage")
	if err != nil {
		return catalog.BookCommand{}, err
	}
	cmd := catalog.BookCommand{
		Title:            form.text("title"),
		ISBN:             form.text("isbn"),
		PublishedYear:    year,
		Description:      form.optional("description"),
		AuthorID:         form.text("authorId"),
		Cover:            cover,
		KeepCurrentCover: form.flag("keepCurrentCover"),
	}
	if yearErr != nil {
		return catalog.BookCommand{}, withYearIssue(cmd, yearErr)
	}
	return cmd, nil
}

func keepCurrent(flag *bool, update bool) bool {
	if flag == nil {
		return update
	}
	return *flag
}
