package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// jsonName reports fields under their wire names.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// ReadAndValidateRequest binds the body into req, fills `default` tags and
// checks `validate` tags. A nil result means req is ready to use.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, len(fieldErrs))
		for i, fe := range fieldErrs {
			out[i] = describe(fe)
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_INVALID_BODY", Message: fmt.Sprint(he.Message)}}
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

// rule renders one validator tag: the phrase that follows the field name and
// the key its parameter is reported under.
type rule struct {
	phrase   string
	paramKey string
}

var rules = map[string]rule{
	"required": {phrase: "is required"},
	"min":      {phrase: "must be at least %s", paramKey: "min"},
	"gte":      {phrase: "must be at least %s", paramKey: "min"},
	"max":      {phrase: "must be at most %s", paramKey: "max"},
	"lte":      {phrase: "must be at most %s", paramKey: "max"},
	"gt":       {phrase: "must be above %s", paramKey: "value"},
	"lt":       {phrase: "must be below %s", paramKey: "value"},
	"oneof":    {phrase: "must be one of [%s]", paramKey: "options"},
	"unique":   {phrase: "must not repeat values"},
	"dive":     {phrase: "has an invalid element"},
}

func describe(fe validator.FieldError) ValidationError {
	field := fieldPath(fe)
	out := ValidationError{Code: "ERR_" + strings.ToUpper(fe.Tag()), Field: field}

	r, ok := rules[fe.Tag()]
	if !ok {
		out.Message = fmt.Sprintf("%s fails %q", field, fe.Tag())
		return out
	}
	if strings.Contains(r.phrase, "%s") {
		out.Message = field + " " + fmt.Sprintf(r.phrase, fe.Param())
	} else {
		out.Message = field + " " + r.phrase
	}
	if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
		out.Message += " characters"
	}
	switch {
	case r.paramKey == "options":
		out.Params = map[string]interface{}{r.paramKey: strings.Fields(fe.Param())}
	case r.paramKey != "":
		out.Params = map[string]interface{}{r.paramKey: fe.Param()}
	}
	return out
}

// fieldPath drops the root struct name, e.g. "portfolio[0].ticker".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}
