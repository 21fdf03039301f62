package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tsmart/voyage-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures come back as *domain.ValidationError with one entry per field.
type echoValidator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	ev := &echoValidator{v: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	// Report fields by their JSON (or query) names.
	ev.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	_ = ev.v.RegisterValidation("maxyear", ev.validateMaxYear)
	_ = ev.v.RegisterValidation("rfc3339", validateRFC3339)
	ev.v.RegisterStructValidation(validateCharterDates, createCharterRequest{}, updateCharterRequest{})
	return ev
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]domain.FieldError, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, domain.FieldError{
					Field:   fieldPath(fe),
					Message: fieldMessage(fe),
					Code:    fe.Tag(),
				})
			}
			return domain.NewValidationError(fields...)
		}
		return err
	}
	return nil
}

// validateMaxYear allows build years up to next year.
func (ev *echoValidator) validateMaxYear(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(ev.now().Year()+1)
}

func validateRFC3339(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

// validateCharterDates requires endDate after startDate when both are set.
func validateCharterDates(sl validator.StructLevel) {
	var start, end string
	switch r := sl.Current().Interface().(type) {
	case createCharterRequest:
		start, end = r.StartDate, r.EndDate
	case updateCharterRequest:
		if r.StartDate == nil || r.EndDate == nil {
			return
		}
		start, end = *r.StartDate, *r.EndDate
	default:
		return
	}

	s, err1 := time.Parse(time.RFC3339, start)
	e, err2 := time.Parse(time.RFC3339, end)
	if err1 != nil || err2 != nil {
		return
	}
	if !e.After(s) {
		sl.ReportError(end, "endDate", "EndDate", "after_start", "")
	}
}

// fieldPath drops the struct name from the namespace: "emergencyContact.phone".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// fieldMessage converts a single ValidationError into a human-readable message.
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return fmt.Sprintf("Invalid %s", field)
	case "url":
		return field + " must be a valid URL"
	case "rfc3339":
		return field + " must be an ISO-8601 date-time"
	case "gt":
		if fe.Param() == "0" {
			return field + " must be positive"
		}
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if isText(fe) {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isText(fe) {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "maxyear":
		return field + " is too far in the future"
	case "nefield":
		return field + " must differ from the current password"
	case "alphanum":
		return field + " must contain only letters and digits"
	case "after_start":
		return "End date must be after start date"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func isText(fe validator.FieldError) bool {
	k := fe.Kind()
	return k == reflect.String || k == reflect.Slice
}

// validID accepts path ids made of letters, digits, '-' and '_'. Anything else
// could smuggle filter syntax into a data store query.
func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
