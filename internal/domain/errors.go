package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrUserNotFound     = errors.New("usuario no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrInvalidOperation = errors.New("operación no permitida en el estado actual")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	// ErrDocNumberTaken violación del índice único de doc_number (carrera de numeración).
	ErrDocNumberTaken = errors.New("número de documento ya asignado")
)
