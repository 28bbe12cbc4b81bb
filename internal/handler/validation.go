package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"booking/internal/domain"
)

// Field errors report the JSON name of the offending field.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes the request body into req and runs its binding rules.
// Failures come back as InvalidInput errors so they flow through respondError.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return formatBindError(err)
	}
	return nil
}

func formatBindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInvalidInput.WithMessage("Malformed request body").Wrap(err)
	}

	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = formatFieldError(fe)
	}
	return domain.ErrInvalidInput.WithMessage("Validation failed: " + strings.Join(parts, ", "))
}

func formatFieldError(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
}
