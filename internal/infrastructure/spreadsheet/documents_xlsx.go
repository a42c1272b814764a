// Package spreadsheet exporta listados de documentos a XLSX.
package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// SheetName hoja con el listado.
const SheetName = "Documents"

var headers = []string{
	"Date", "Number", "Type", "Status", "Customer", "Items", "Subtotal", "Tax", "Total", "Converted from", "Notes",
}

// DocumentsRenderer implementa documents.SpreadsheetRenderer con excelize.
type DocumentsRenderer struct{}

// NewDocumentsRenderer construye el exportador.
func NewDocumentsRenderer() *DocumentsRenderer { return &DocumentsRenderer{} }

// Render escribe una fila por documento más una fila de totales con fórmulas SUM.
func (r *DocumentsRenderer) Render(docs []*entity.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(SheetName, "A1", "K1", headerStyle)

	for i, d := range docs {
		rowNo := i + 2
		values := []any{
			d.CreatedAt.Format("2006-01-02 15:04"),
			d.DocNumber,
			string(d.DocType),
			string(d.Status),
			d.CustomerName,
			len(d.Items),
			d.Subtotal.InexactFloat64(),
			d.Tax.InexactFloat64(),
			d.Total.InexactFloat64(),
			d.ConvertedFrom,
			d.Notes,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNo)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: celda %s: %w", cell, err)
			}
		}
	}

	last := len(docs) + 1
	totalRow := last + 1
	if len(docs) > 0 {
		_ = f.SetCellValue(SheetName, fmt.Sprintf("F%d", totalRow), "TOTAL")
		for _, colName := range []string{"G", "H", "I"} {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", colName, colName, last)
			if err := f.SetCellFormula(SheetName, fmt.Sprintf("%s%d", colName, totalRow), formula); err != nil {
				return nil, fmt.Errorf("xlsx: fórmula: %w", err)
			}
		}
		_ = f.SetCellStyle(SheetName, "G2", fmt.Sprintf("I%d", totalRow), amountStyle)
	}
	_ = f.SetColWidth(SheetName, "A", "A", 17)
	_ = f.SetColWidth(SheetName, "B", "B", 14)
	_ = f.SetColWidth(SheetName, "E", "E", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
