package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "fusiondash/internal/errors"
)

// Validator binds query parameters onto tagged structs and validates them
// with struct tags. Field names in errors come from the query tag, falling
// back to the json tag.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a query validator
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"query", "json"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: v}
}

// BindQuery copies query parameters into dst, a pointer to a struct whose
// fields carry `query` tags, then validates it. Embedded structs are walked.
// Malformed numbers and failed rules both come back as a 400 APIError.
func (v *Validator) BindQuery(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind query: destination must be a pointer to a struct, got %T", dst)
	}

	var fieldErrs []apierrors.ValidationError
	bindValues(r.URL.Query(), rv.Elem(), &fieldErrs)
	if len(fieldErrs) > 0 {
		return apierrors.NewValidationErrors(fieldErrs)
	}

	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	fieldErrs := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(fieldErrs)
}

func bindValues(values url.Values, rv reflect.Value, fieldErrs *[]apierrors.ValidationError) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)

		if field.Anonymous && fv.Kind() == reflect.Struct {
			bindValues(values, fv, fieldErrs)
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("query"), ",")
		if name == "" || name == "-" || !fv.CanSet() {
			continue
		}
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		// Strings are bound verbatim: filter values match cells exactly
		if fv.Kind() == reflect.String {
			fv.SetString(raw[0])
			continue
		}
		value := strings.TrimSpace(raw[0])

		switch fv.Kind() {
		case reflect.Int, reflect.Int64, reflect.Int32:
			if value == "" {
				continue
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				*fieldErrs = append(*fieldErrs, apierrors.ValidationError{
					Field:   name,
					Message: fmt.Sprintf("%s must be an integer", name),
				})
				continue
			}
			fv.SetInt(n)
		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				*fieldErrs = append(*fieldErrs, apierrors.ValidationError{
					Field:   name,
					Message: fmt.Sprintf("%s must be a boolean", name),
				})
				continue
			}
			fv.SetBool(b)
		}
	}
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, formatOneOf(param))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// formatOneOf renders a oneof parameter, keeping quoted values together
func formatOneOf(param string) string {
	var (
		out     []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range param {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == ' ' && !quoted:
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return strings.Join(out, ", ")
}
