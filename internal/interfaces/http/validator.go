package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cmc/certificados-api/internal/domain"
)

// Validator envuelve go-playground/validator y reporta los campos con su nombre JSON.
type Validator struct {
	v *validator.Validate
}

// NewValidator construye el validador de requests.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate devuelve un error que envuelve domain.ErrInvalidInput con un mensaje por campo.
func (val *Validator) Validate(i any) error {
	if err := val.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// bind parsea el cuerpo JSON en in y lo valida.
func (val *Validator) bind(c *fiber.Ctx, in any) error {
	if err := c.BodyParser(in); err != nil {
		return fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	return val.Validate(in)
}

// fieldError traduce un error de validación a un mensaje legible.
func fieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " es obligatorio"
	case "max":
		return fmt.Sprintf("%s admite máximo %s caracteres", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s debe tener al menos %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s debe tener formato %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s no es válido (%s)", field, fe.Tag())
	}
}
