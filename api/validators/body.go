package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harborline/shipline-backend/pkg/db/models"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/types"
)

var validate = newValidator()

// CrossFieldValidator is implemented by inputs with rules spanning fields.
type CrossFieldValidator interface {
	CrossValidate() []types.FieldError
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	mustRegister(v, "identity", patternValidator(identityPattern.MatchString))
	mustRegister(v, "vesselname", patternValidator(models.VesselNamePattern.MatchString))
	mustRegister(v, "voyageno", patternValidator(models.VoyageNoPattern.MatchString))
	mustRegister(v, "country", patternValidator(models.CountryPattern.MatchString))
	mustRegister(v, "portname", patternValidator(models.PortNamePattern.MatchString))
	mustRegister(v, "timestamp", func(fl validator.FieldLevel) bool {
		_, err := types.ParseTimestamp(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func patternValidator(match func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return match(fl.Field().String())
	}
}

// DecodeJSONBody decodes a single JSON object into dest, trims its string
// fields and validates it. Unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}
	TrimStrings(dest)
	return Validate(dest)
}

// Validate runs struct tags and any cross-field rules against dest.
func Validate(dest any) error {
	var details []types.FieldError
	if err := validate.Struct(dest); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
		for _, fieldErr := range errs {
			details = append(details, types.FieldError{
				Field:   fieldErr.Field(),
				Message: validationMessage(fieldErr),
			})
		}
	}
	if cv, ok := dest.(CrossFieldValidator); ok {
		details = append(details, cv.CrossValidate()...)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "request validation failed").WithDetails(details)
	}
	return nil
}

func decodeError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return pkgerrors.Wrap(pkgerrors.CodeRequestTooLarge, err, "request body too large")
	}
	if errors.Is(err, io.EOF) {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails([]types.FieldError{{Field: field, Message: fmt.Sprintf("must be of type %s", jsonType(typeErr.Type))}})
	}

	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails([]types.FieldError{{Field: field, Message: "is not allowed"}})
	}

	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed JSON body").
		WithDetails([]types.FieldError{{Field: "body", Message: msg}})
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Float64, reflect.Float32:
		return "number"
	case reflect.Ptr:
		return jsonType(t.Elem())
	}
	return "object"
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "identity":
		return fmt.Sprintf("%s can only contain alphanumeric characters, hyphens, and underscores", fe.Field())
	case "voyageno":
		return fmt.Sprintf("%s can only contain alphanumeric characters, hyphens, and underscores", fe.Field())
	case "vesselname", "country", "portname":
		return fmt.Sprintf("%s contains invalid characters", fe.Field())
	case "timestamp":
		return fmt.Sprintf("%s must be a valid date after 1900-01-01", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
