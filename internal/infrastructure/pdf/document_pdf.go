// Package pdf genera la representación impresa (A4) de cotizaciones, notas de
// entrega y recibos.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda                │  Tipo + N° + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: nombre / estado / origen de conversión             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA 7% / TOTAL                          │
//	│  FOOTER: notas + huella SHA-256                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/pkg/money"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var titles = map[entity.DocType]string{
	entity.DocTypeQuotation: "QUOTATION",
	entity.DocTypeVOI:       "DELIVERY NOTE",
	entity.DocTypeReceipt:   "RECEIPT",
}

// Fingerprinter calcula la huella del documento que se imprime en el pie.
type Fingerprinter interface {
	Fingerprint(doc *entity.Document) (string, error)
}

// DocumentRenderer implementa documents.PDFRenderer usando Maroto v2.
type DocumentRenderer struct {
	shopName    string
	fingerprint Fingerprinter // opcional
}

// NewDocumentRenderer construye el generador. fp puede ser nil.
func NewDocumentRenderer(shopName string, fp Fingerprinter) *DocumentRenderer {
	return &DocumentRenderer{shopName: shopName, fingerprint: fp}
}

// Render genera el PDF y devuelve sus bytes.
func (g *DocumentRenderer) Render(doc *entity.Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.DocNumber, true).
		WithAuthor(g.shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.shopName, doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(doc.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	footer, err := g.footerRows(doc)
	if err != nil {
		return nil, err
	}
	m.AddRows(footer...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

func headerRow(shop string, doc *entity.Document) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(shop, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New(titles[doc.DocType], props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.DocNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Date: "+doc.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(doc *entity.Document) core.Row {
	detail := "Status: " + string(doc.Status)
	if doc.ConvertedFrom != "" {
		detail += "   |   Converted from: " + doc.ConvertedFrom
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CUSTOMER", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(doc.CustomerName, "-"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Product", 6, align.Left),
		h("Unit price", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func itemRows(items []entity.LineItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(strconv.FormatInt(it.Quantity, 10), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Format(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money.Format(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(doc *entity.Document) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("VAT 7%:", 7),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13}),
		),
		col.New(3).Add(
			value(money.FormatTHB(doc.Subtotal), 1),
			value(money.FormatTHB(doc.Tax), 7),
			text.New(money.FormatTHB(doc.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13}),
		),
	)
}

func (g *DocumentRenderer) footerRows(doc *entity.Document) ([]core.Row, error) {
	rows := []core.Row{line.NewRow(3), line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3})}
	if doc.Notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notes: "+doc.Notes, props.Text{Size: 8, Top: 2}),
		)))
	}
	if g.fingerprint != nil {
		fp, err := g.fingerprint.Fingerprint(doc)
		if err != nil {
			return nil, fmt.Errorf("pdf: huella: %w", err)
		}
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("SHA-256: "+fp, props.Text{Size: 6.5, Color: colorGray, Top: 1}),
		)))
	}
	return rows, nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
