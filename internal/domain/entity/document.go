package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocType tipo de documento comercial.
type DocType string

// Tipos de documento.
const (
	DocTypeQuotation DocType = "quotation" // cotización
	DocTypeVOI       DocType = "voi"       // nota de entrega
	DocTypeReceipt   DocType = "receipt"   // recibo
)

// IsValid indica si el tipo pertenece al catálogo.
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeQuotation, DocTypeVOI, DocTypeReceipt:
		return true
	}
	return false
}

// DocStatus estado del ciclo de vida de un documento.
type DocStatus string

// Estados de documento.
const (
	DocStatusDraft     DocStatus = "draft"
	DocStatusConfirmed DocStatus = "confirmed"
	DocStatusConverted DocStatus = "converted"
	DocStatusCancelled DocStatus = "cancelled"
)

// IsValid indica si el estado pertenece al catálogo.
func (s DocStatus) IsValid() bool {
	switch s {
	case DocStatusDraft, DocStatusConfirmed, DocStatusConverted, DocStatusCancelled:
		return true
	}
	return false
}

// LineItem línea de un documento. ProductName es una copia tomada al escribir
// el documento y no se vuelve a resolver contra el catálogo.
type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Document cabecera y líneas de una cotización, nota de entrega o recibo.
type Document struct {
	ID            string
	DocNumber     string
	DocType       DocType
	CustomerID    string // vacío = sin cliente registrado
	CustomerName  string // copia del nombre al momento de escribir
	Items         []LineItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Status        DocStatus
	Notes         string
	ConvertedFrom string // ID de la cotización origen (solo recibos convertidos)
	CreatedBy     string
	CreatedAt     time.Time
}

// DocumentFilter criterios de listado.
type DocumentFilter struct {
	Type   DocType
	Status DocStatus
	Search string // coincide con doc_number o customer_name (ILIKE)
}

// DocumentStats resumen del dashboard.
type DocumentStats struct {
	TotalRevenue   decimal.Decimal // suma de total de recibos confirmados
	QuotationCount int64
	VOICount       int64
	ReceiptCount   int64
}
