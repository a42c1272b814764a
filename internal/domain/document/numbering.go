// Package document contiene las reglas de dominio de los documentos comerciales:
// numeración consecutiva por tipo y año, cálculo de totales con IVA 7% y
// transiciones de estado incluida la conversión de cotización a recibo.
package document

import (
	"fmt"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// Prefix devuelve el prefijo del consecutivo para el tipo de documento.
// El tipo ya fue validado por el caller; un tipo desconocido cae en el de recibo.
func Prefix(t entity.DocType) string {
	switch t {
	case entity.DocTypeQuotation:
		return "QT"
	case entity.DocTypeVOI:
		return "VD"
	default:
		return "RC"
	}
}

// FormatNumber arma el número visible: {PREFIX}-{YEAR}-{seq} con seq a 3 dígitos.
func FormatNumber(t entity.DocType, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%03d", Prefix(t), year, seq)
}

// NumberPattern devuelve el patrón LIKE que cubre todos los números del tipo y año.
func NumberPattern(t entity.DocType, year int) string {
	return fmt.Sprintf("%s-%d-%%", Prefix(t), year)
}

// NextSequence calcula el siguiente consecutivo a partir de la cantidad de
// documentos del tipo creados en el año y del mayor consecutivo ya usado.
// Sin borrados ambos valores coinciden; con borrados manda el mayor para no
// repetir un número existente.
func NextSequence(count, maxSeq int64) int64 {
	if maxSeq > count {
		return maxSeq + 1
	}
	return count + 1
}
