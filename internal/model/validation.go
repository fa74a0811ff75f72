package model

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation errors. The shape errors are distinct kinds: a payload can
// fail one without failing the other.
var (
	ErrExtraField   = errors.New("extra field")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidValue = errors.New("invalid value")
)

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ShapeError reports fields that are present but not allowed, or required
// but absent. It unwraps to ErrExtraField or ErrMissingField.
type ShapeError struct {
	Kind    error
	Fields  []string
	Allowed []string
}

func (e *ShapeError) Error() string {
	if errors.Is(e.Kind, ErrExtraField) {
		if len(e.Allowed) == 1 {
			return fmt.Sprintf("The request body may only contain the %s attribute", e.Allowed[0])
		}
		return fmt.Sprintf("The request body may only contain the %s attributes", strings.Join(e.Allowed, ", "))
	}
	if len(e.Fields) == 1 {
		return fmt.Sprintf("The request body is missing the required %s attribute", e.Fields[0])
	}
	return fmt.Sprintf("The request body is missing the required %s attributes", strings.Join(e.Fields, ", "))
}

func (e *ShapeError) Unwrap() error {
	return e.Kind
}

// ValidationError collects value-level failures. It unwraps to ErrInvalidValue.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "One or more fields failed validation"
	}
	msg := fmt.Sprintf("Invalid %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	if len(e.Errors) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(e.Errors)-1)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}

// NewValidationError wraps field errors, returning nil when there are none
func NewValidationError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// CheckAllowedFields rejects any payload key outside allowed.
func CheckAllowedFields(payload map[string]any, allowed []string) error {
	var extra []string
	for key := range payload {
		if !contains(allowed, key) {
			extra = append(extra, key)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return &ShapeError{Kind: ErrExtraField, Fields: extra, Allowed: allowed}
}

// CheckRequiredFields rejects a payload missing any required key. A key
// whose value is null counts as missing.
func CheckRequiredFields(payload map[string]any, required []string) error {
	var missing []string
	for _, key := range required {
		if v, ok := payload[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ShapeError{Kind: ErrMissingField, Fields: missing, Allowed: required}
}

// ValidateShape checks allowed fields first, then required fields. Pass a
// nil required list for partial edits.
func ValidateShape(payload map[string]any, required, allowed []string) error {
	if err := CheckAllowedFields(payload, allowed); err != nil {
		return err
	}
	return CheckRequiredFields(payload, required)
}

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidateDate checks an MM-DD-YYYY calendar date. February has 29 days in
// any year divisible by 4; the century exception is not applied.
func ValidateDate(value string) error {
	parts := strings.Split(value, "-")
	if len(parts) != 3 || len(parts[0]) != 2 || len(parts[1]) != 2 || len(parts[2]) != 4 ||
		!isDigits(parts[0]) || !isDigits(parts[1]) || !isDigits(parts[2]) {
		return fmt.Errorf("%w: must be formatted MM-DD-YYYY", ErrInvalidDate)
	}

	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return fmt.Errorf("%w: must be formatted MM-DD-YYYY", ErrInvalidDate)
	}

	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 01 and 12", ErrInvalidDate)
	}

	maxDay := daysInMonth[month]
	if month == 2 && year%4 == 0 {
		maxDay = 29
	}
	if day < 1 || day > maxDay {
		return fmt.Errorf("%w: day must be between 01 and %02d", ErrInvalidDate, maxDay)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct-tag validation and converts failures to
// FieldErrors keyed by JSON name.
func validateStruct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: describeTag(fe)})
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
