// Package money formatea montos para PDF y hojas de cálculo.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format devuelve el monto con separador de miles y dos decimales: 52,836.60.
func Format(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// FormatTHB igual que Format con el símbolo del baht.
func FormatTHB(d decimal.Decimal) string {
	return "฿" + Format(d)
}
