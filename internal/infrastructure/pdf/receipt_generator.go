// Package pdf genera el recibo de venta (tirilla) en PDF.
//
// Layout:
//
//	┌──────────────────────────────────────────────┐
//	│  Nombre del negocio   │  Código + fecha      │
//	│  ──────────────────────────────────────────  │
//	│  Cant | Producto | P.Unit | Subtotal         │
//	│  ──────────────────────────────────────────  │
//	│  TOTAL / RECIBIDO / CAMBIO                   │
//	│  QR con el código de la venta                │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/resto-pos-api/internal/application/sales"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

var _ sales.ReceiptGenerator = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 20, Blue: 20}
)

// ReceiptGenerator implementa sales.ReceiptGenerator con Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// Generate arma el recibo de la venta y devuelve los bytes del PDF.
func (g *ReceiptGenerator) Generate(tx *entity.Transaction, businessName string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo "+tx.Code, true).
		WithAuthor(businessName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(tx, businessName))
	if tx.Cancelled() {
		m.AddRows(cancelledRow(tx))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(tx.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(tx))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(tx))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(tx *entity.Transaction, businessName string) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(businessName, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New("Atendió: "+tx.ActorID, props.Text{Size: 7, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(tx.Code, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1}),
			text.New(tx.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorGray}),
		),
	)
}

func cancelledRow(tx *entity.Transaction) core.Row {
	label := "VENTA ANULADA"
	if tx.CancelledAt != nil {
		label += " · " + tx.CancelledAt.Format("02/01/2006 15:04")
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: colorAlert, Top: 1}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func itemRows(items []entity.TransactionItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.MenuItemName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(Money(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(Money(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalsRow(tx *entity.Transaction) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right})
	}
	return row.New(18).Add(
		col.New(5),
		col.New(3).Add(
			label("TOTAL:"),
			text.New("Recibido:", props.Text{Size: 8, Align: align.Right, Top: 6}),
			text.New("Cambio:", props.Text{Size: 8, Align: align.Right, Top: 11}),
		),
		col.New(4).Add(
			text.New(Money(tx.Total), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary}),
			text.New(Money(tx.Tendered), props.Text{Size: 8, Align: align.Right, Top: 6}),
			text.New(Money(tx.Change), props.Text{Size: 8, Align: align.Right, Top: 11}),
		),
	)
}

func footerRow(tx *entity.Transaction) core.Row {
	return row.New(30).Add(
		col.New(4).Add(code.NewQr(tx.Code, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 9, Top: 6, Left: 3}),
			text.New("Presente este código para anulaciones.", props.Text{Size: 7, Top: 13, Left: 3, Color: colorGray}),
		),
	)
}

// Money formatea un valor como "$75.000" (miles con punto, sin decimales si son cero).
func Money(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	out := sign + "$" + groupThousands(intPart)
	if frac != "00" {
		out += "," + frac
	}
	return out
}

// groupThousands inserta puntos de miles: "1000000" → "1.000.000".
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
