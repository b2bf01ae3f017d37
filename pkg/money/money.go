// Package money formats quote prices and payment amounts.
package money

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used when a record carries no currency code.
const DefaultCurrency = "USD"

// Amount is a value in minor units (cents) of a currency.
type Amount struct {
	Currency string
	Minor    int64
}

// FromMajor rounds v to the nearest minor unit.
func FromMajor(v float64, code string) Amount {
	return Amount{Currency: code, Minor: int64(math.Round(v * 100))}
}

// Major returns the amount in major units.
func (a Amount) Major() float64 { return float64(a.Minor) / 100 }

func (a Amount) String() string { return a.Format(language.AmericanEnglish) }

// Format renders a using the conventions of tag, e.g. "$1,234.50".
// Unknown currency codes fall back to the code itself as the symbol.
func (a Amount) Format(tag language.Tag) string {
	code := strings.ToUpper(a.Currency)
	if code == "" {
		code = DefaultCurrency
	}

	p := message.NewPrinter(tag)
	num := p.Sprint(number.Decimal(math.Abs(a.Major()), number.Scale(2)))

	sign := ""
	if a.Minor < 0 {
		sign = "-"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return sign + code + " " + num
	}
	return sign + p.Sprint(currency.Symbol(unit)) + num
}

// Format is shorthand for FromMajor(v, code).String().
func Format(v float64, code string) string {
	return FromMajor(v, code).String()
}
