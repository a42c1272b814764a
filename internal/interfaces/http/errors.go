package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain"
)

// Códigos de error del body {error, code}.
const (
	CodeInvalidBody      = "INVALID_BODY"
	CodeValidation       = "VALIDATION"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicate        = "DUPLICATE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL"
)

const internalMessage = "error interno del servidor"

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Code: code})
}

// writeError traduce errores de dominio a HTTP. Lo inesperado se registra
// con detalle y al cliente solo le llega un mensaje genérico.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		return fail(c, fiber.StatusBadRequest, CodeInvalidOperation, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return fail(c, fiber.StatusConflict, CodeDuplicate, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, CodeForbidden, err.Error())
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error no controlado")
	return fail(c, fiber.StatusInternalServerError, CodeInternal, internalMessage)
}

// ErrorHandler handler de errores de Fiber (404 de ruta, panics recuperados, etc.).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			code = CodeInvalidBody
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		}
		if fe.Code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("error de fiber")
			return fail(c, fe.Code, CodeInternal, internalMessage)
		}
		return fail(c, fe.Code, code, fe.Message)
	}
	return writeError(c, err)
}
