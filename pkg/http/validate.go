package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// fieldMessages maps a validator tag to a message template taking (field, param).
var fieldMessages = map[string]string{
	"required": "%s is required",
	"max":      "%s must be at most %s characters",
	"min":      "%s must be at least %s characters",
	"alphanum": "%s must be alphanumeric",
	"oneof":    "%s must be one of %s",
	"gte":      "%s must be >= %s",
	"lte":      "%s must be <= %s",
}

// ReadAndValidateRequest binds path, query and body into req, applies `default` tags and
// runs `validate` tags. A nil result means req is usable.
func ReadAndValidateRequest(c echo.Context, req interface{}) []FieldError {
	if err := c.Bind(req); err != nil {
		return fieldErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return fieldErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, describe(fe))
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []FieldError{{Code: "ERR_BIND", Message: fmt.Sprint(he.Message)}}
	}
	return []FieldError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

func describe(fe validator.FieldError) FieldError {
	field := strings.ToLower(fe.Field())
	out := FieldError{Code: "ERR_" + strings.ToUpper(fe.Tag()), Field: field}

	switch tmpl, ok := fieldMessages[fe.Tag()]; {
	case !ok:
		out.Message = fmt.Sprintf("%s failed %s", field, fe.Tag())
	case strings.Count(tmpl, "%s") == 2:
		out.Message = fmt.Sprintf(tmpl, field, fe.Param())
	default:
		out.Message = fmt.Sprintf(tmpl, field)
	}
	if fe.Param() != "" {
		out.Params = map[string]string{fe.Tag(): fe.Param()}
	}
	return out
}
