package documents

import (
	"encoding/json"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// ToDocumentResponse convierte la entidad al formato JSON de la API.
func ToDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	items := make([]dto.LineItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, dto.LineItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   json.Number(it.UnitPrice.String()),
			Total:       json.Number(it.Total.String()),
		})
	}
	return &dto.DocumentResponse{
		ID:            d.ID,
		DocNumber:     d.DocNumber,
		DocType:       string(d.DocType),
		CustomerID:    optional(d.CustomerID),
		CustomerName:  optional(d.CustomerName),
		Items:         items,
		Subtotal:      d.Subtotal.StringFixed(2),
		Tax:           d.Tax.StringFixed(2),
		Total:         d.Total.StringFixed(2),
		Status:        string(d.Status),
		Notes:         optional(d.Notes),
		ConvertedFrom: optional(d.ConvertedFrom),
		CreatedBy:     optional(d.CreatedBy),
		CreatedAt:     d.CreatedAt,
	}
}

// ToStatsResponse convierte el resumen; el ingreso sale como número JSON.
func ToStatsResponse(s *entity.DocumentStats) dto.DocumentStatsResponse {
	return dto.DocumentStatsResponse{
		TotalRevenue:   json.Number(s.TotalRevenue.String()),
		QuotationCount: s.QuotationCount,
		VOICount:       s.VOICount,
		ReceiptCount:   s.ReceiptCount,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
