package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo según el JSON para los mensajes.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON parsea el body y valida la forma del DTO. Si falla ya escribió la respuesta 400
// y devuelve ok=false.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, fail(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	if err := validate.Struct(dst); err != nil {
		return false, fail(c, fiber.StatusBadRequest, CodeValidation, validationMessage(err))
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "entrada inválida"
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", field)
	case "min":
		return fmt.Sprintf("%s: mínimo %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: máximo %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s debe ser mayor o igual a %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s no es un identificador válido", field)
	case "email":
		return fmt.Sprintf("%s no es un email válido", field)
	}
	return fmt.Sprintf("%s inválido (%s)", field, fe.Tag())
}
