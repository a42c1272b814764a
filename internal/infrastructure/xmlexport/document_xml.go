// Package xmlexport serializa documentos a XML y calcula su huella SHA-256
// sobre la forma canónica (C14N), de modo que la huella no depende del
// formato con que se escribió el XML.
package xmlexport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/tienda-pos/backoffice-api/internal/domain/document"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// Namespace del XML de documentos.
const Namespace = "urn:tienda-pos:document:1"

// DocumentRenderer implementa documents.XMLRenderer y pdf.Fingerprinter.
type DocumentRenderer struct{}

// NewDocumentRenderer construye el serializador.
func NewDocumentRenderer() *DocumentRenderer { return &DocumentRenderer{} }

// Render devuelve el XML (con declaración) y la huella hex de su forma canónica.
func (r *DocumentRenderer) Render(doc *entity.Document) ([]byte, string, error) {
	body, err := build(doc)
	if err != nil {
		return nil, "", err
	}
	fp, err := fingerprint(body)
	if err != nil {
		return nil, "", err
	}
	out := append([]byte(xml.Header), body...)
	return out, fp, nil
}

// Fingerprint huella SHA-256 (hex) del XML canónico del documento.
func (r *DocumentRenderer) Fingerprint(doc *entity.Document) (string, error) {
	body, err := build(doc)
	if err != nil {
		return "", err
	}
	return fingerprint(body)
}

func build(doc *entity.Document) ([]byte, error) {
	x := etree.NewDocument()
	root := x.CreateElement("Document")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("id", doc.ID)
	root.CreateAttr("number", doc.DocNumber)

	root.CreateElement("Type").SetText(string(doc.DocType))
	root.CreateElement("Status").SetText(string(doc.Status))
	root.CreateElement("CreatedAt").SetText(doc.CreatedAt.UTC().Format(time.RFC3339))

	customer := root.CreateElement("Customer")
	if doc.CustomerID != "" {
		customer.CreateAttr("id", doc.CustomerID)
	}
	customer.SetText(doc.CustomerName)

	items := root.CreateElement("Items")
	for i, it := range doc.Items {
		el := items.CreateElement("Item")
		el.CreateAttr("line", strconv.Itoa(i+1))
		if it.ProductID != "" {
			el.CreateAttr("productId", it.ProductID)
		}
		el.CreateElement("Name").SetText(it.ProductName)
		el.CreateElement("Quantity").SetText(strconv.FormatInt(it.Quantity, 10))
		el.CreateElement("UnitPrice").SetText(it.UnitPrice.StringFixed(2))
		el.CreateElement("Total").SetText(it.Total.StringFixed(2))
	}

	totals := root.CreateElement("Totals")
	totals.CreateElement("Subtotal").SetText(doc.Subtotal.StringFixed(2))
	tax := totals.CreateElement("Tax")
	tax.CreateAttr("rate", document.TaxRate.String())
	tax.SetText(doc.Tax.StringFixed(2))
	totals.CreateElement("Total").SetText(doc.Total.StringFixed(2))

	if doc.Notes != "" {
		root.CreateElement("Notes").SetText(doc.Notes)
	}
	if doc.ConvertedFrom != "" {
		root.CreateElement("ConvertedFrom").SetText(doc.ConvertedFrom)
	}

	x.Indent(2)
	b, err := x.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: serializar %s: %w", doc.DocNumber, err)
	}
	return b, nil
}

func fingerprint(body []byte) (string, error) {
	canonical, err := canonicalize(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("xml: canonicalizar: %w", err)
	}
	return out, nil
}
