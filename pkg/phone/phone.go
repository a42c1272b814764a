// Package phone normaliza teléfonos de clientes a formato E.164.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// ErrInvalid el número no es válido para la región indicada.
var ErrInvalid = errors.New("teléfono inválido")

// Normalize interpreta raw con la región por defecto (ISO 3166-1, ej. "TH")
// y lo devuelve en E.164. Vacío devuelve vacío.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	p, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", ErrInvalid
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
