// Package response renders every API reply inside one envelope:
//
//	{success, data?, message?, error?, pagination?, meta{timestamp, version, requestId}}
//
// A successful envelope never carries error; a failed one never carries data.
package response

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/api/reqctx"
	"github.com/tsmart/voyage-api/internal/core/domain"
)

// Error codes carried in error.code.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeConflict         = "CONFLICT"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// timestampFormat is ISO-8601 with millisecond precision.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Meta       Meta        `json:"meta"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type Meta struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	RequestID string `json:"requestId"`
}

// NewPagination computes page metadata; totalPages is ceil(total/limit).
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ParseFilters keeps the allowed query parameters and types them: "true" and
// "false" become bools, numeric strings become float64, the rest stay strings.
// Empty values are dropped.
func ParseFilters(values url.Values, allowed []string) map[string]any {
	filters := make(map[string]any)
	for _, name := range allowed {
		if !values.Has(name) {
			continue
		}
		v := values.Get(name)
		switch {
		case v == "":
			continue
		case v == "true" || v == "false":
			filters[name] = v == "true"
		default:
			if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
				filters[name] = n
			} else {
				filters[name] = v
			}
		}
	}
	return filters
}

// Formatter writes envelopes. Build one at startup and share it.
type Formatter struct {
	version string
	log     zerolog.Logger
	now     func() time.Time
}

func NewFormatter(version string, log zerolog.Logger) *Formatter {
	if version == "" {
		version = "v1"
	}
	return &Formatter{
		version: version,
		log:     log.With().Str("component", "response").Logger(),
		now:     time.Now,
	}
}

func (f *Formatter) meta(c echo.Context) Meta {
	return Meta{
		Timestamp: f.now().UTC().Format(timestampFormat),
		Version:   f.version,
		RequestID: reqctx.RequestID(c),
	}
}

func (f *Formatter) write(c echo.Context, status int, env Envelope) error {
	env.Meta = f.meta(c)
	return c.JSON(status, env)
}

// Success answers 200 with data and optional pagination.
func (f *Formatter) Success(c echo.Context, data any, message string, p *Pagination) error {
	return f.write(c, http.StatusOK, Envelope{Success: true, Data: data, Message: message, Pagination: p})
}

func (f *Formatter) Created(c echo.Context, data any, message string) error {
	if message == "" {
		message = "Resource created successfully"
	}
	return f.write(c, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

func (f *Formatter) Updated(c echo.Context, data any, message string) error {
	if message == "" {
		message = "Resource updated successfully"
	}
	return f.write(c, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func (f *Formatter) Deleted(c echo.Context, message string) error {
	if message == "" {
		message = "Resource deleted successfully"
	}
	return f.write(c, http.StatusOK, Envelope{Success: true, Message: message})
}

// NoContent answers 204 without an envelope.
func (f *Formatter) NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error renders e. Server faults are logged at error level, client faults at warn.
func (f *Formatter) Error(c echo.Context, e *APIError) error {
	ev := f.log.Warn()
	if e.Status >= http.StatusInternalServerError {
		ev = f.log.Error()
	}
	ev.Int("status", e.Status).
		Str("code", e.Code).
		Str("request_id", reqctx.RequestID(c)).
		Msg(e.Message)

	return f.write(c, e.Status, Envelope{
		Success: false,
		Message: e.Message,
		Error:   &ErrorBody{Code: e.Code, Message: e.Message, Details: e.Details},
	})
}

func (f *Formatter) ValidationError(c echo.Context, fields []domain.FieldError, message string) error {
	return f.Error(c, ValidationFailed(fields, message))
}

func (f *Formatter) BadRequest(c echo.Context, message string) error {
	return f.Error(c, BadRequest(message))
}

func (f *Formatter) Unauthorized(c echo.Context, message string) error {
	return f.Error(c, Unauthorized(message))
}

func (f *Formatter) Forbidden(c echo.Context, message string) error {
	return f.Error(c, Forbidden(message))
}

func (f *Formatter) NotFound(c echo.Context, resource, id string) error {
	return f.Error(c, NotFound(resource, id))
}

func (f *Formatter) Conflict(c echo.Context, message string, details any) error {
	return f.Error(c, Conflict(message, details))
}

func (f *Formatter) TooManyRequests(c echo.Context, message string) error {
	return f.Error(c, TooManyRequests(message))
}

func (f *Formatter) InternalError(c echo.Context, message string) error {
	return f.Error(c, Internal(message))
}
