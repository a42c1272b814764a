package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea enviada por el cliente. Total se ignora: el servidor lo recalcula.
type LineItemRequest struct {
	ProductID   string           `json:"productId"`
	ProductName string           `json:"productName" validate:"max=200"`
	Quantity    int64            `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	Total       *decimal.Decimal `json:"total,omitempty"`
}

// CreateDocumentRequest body para POST /api/documents.
type CreateDocumentRequest struct {
	DocType      string            `json:"docType" validate:"required,oneof=quotation voi receipt"`
	CustomerID   string            `json:"customerId" validate:"omitempty,uuid"`
	CustomerName string            `json:"customerName" validate:"max=200"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes        string            `json:"notes"`
	Status       string            `json:"status" validate:"omitempty,oneof=draft confirmed converted cancelled"`
}

// UpdateDocumentRequest body para PATCH /api/documents/:id. Campo nil = no se toca.
// Items nil deja intactos subtotal, tax y total.
type UpdateDocumentRequest struct {
	CustomerID   *string            `json:"customerId" validate:"omitempty,uuid"`
	CustomerName *string            `json:"customerName" validate:"omitempty,max=200"`
	Items        *[]LineItemRequest `json:"items"`
	Notes        *string            `json:"notes"`
	Status       *string            `json:"status" validate:"omitempty,oneof=draft confirmed converted cancelled"`
}

// DocumentFilterRequest query de GET /api/documents y /api/documents/export.
type DocumentFilterRequest struct {
	Type   string `query:"type"`
	Status string `query:"status"`
	Search string `query:"search"`
}

// LineItemResponse línea en respuestas; montos como números JSON.
type LineItemResponse struct {
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
	Total       json.Number `json:"total"`
}

// DocumentResponse documento en respuestas. Los montos de cabecera van como
// string con dos decimales (columna NUMERIC(12,2)).
type DocumentResponse struct {
	ID            string             `json:"id"`
	DocNumber     string             `json:"docNumber"`
	DocType       string             `json:"docType"`
	CustomerID    *string            `json:"customerId"`
	CustomerName  *string            `json:"customerName"`
	Items         []LineItemResponse `json:"items"`
	Subtotal      string             `json:"subtotal"`
	Tax           string             `json:"tax"`
	Total         string             `json:"total"`
	Status        string             `json:"status"`
	Notes         *string            `json:"notes"`
	ConvertedFrom *string            `json:"convertedFrom"`
	CreatedBy     *string            `json:"createdBy"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// DocumentEnvelope {document}.
type DocumentEnvelope struct {
	Document *DocumentResponse `json:"document"`
}

// DocumentListEnvelope {documents}.
type DocumentListEnvelope struct {
	Documents []DocumentResponse `json:"documents"`
}

// DocumentStatsResponse resumen del dashboard.
type DocumentStatsResponse struct {
	TotalRevenue   json.Number `json:"totalRevenue"`
	QuotationCount int64       `json:"quotationCount"`
	VOICount       int64       `json:"voiCount"`
	ReceiptCount   int64       `json:"receiptCount"`
}

// DocumentStatsEnvelope {stats}.
type DocumentStatsEnvelope struct {
	Stats DocumentStatsResponse `json:"stats"`
}

// RenderedFile archivo generado (PDF, XML, XLSX) listo para enviar.
type RenderedFile struct {
	Filename    string
	ContentType string
	Content     []byte
	Fingerprint string // SHA-256 del XML canónico (solo XML)
}
