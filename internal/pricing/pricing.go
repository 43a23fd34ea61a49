package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Strategy is the margin model used by a deployment. It never varies per product.
type Strategy string

const (
	// MarginPercent applies profit as a percentage on top of the taxed price.
	MarginPercent Strategy = "margin_percent"
	// LaborCost adds a flat labor amount to the cost base before tax.
	LaborCost Strategy = "labor_cost"
)

// Defaults used when a product input omits the field.
const (
	DefaultTaxRate             = 21.0
	DefaultProfitMarginPercent = 30.0
)

// Input caps. With every input at its cap the final price is still finite.
const (
	MaxAmount  = 1e9
	MaxPercent = 1e4
)

const currencySymbol = "€"

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case MarginPercent, LaborCost:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown pricing strategy %q (use %q or %q)", s, MarginPercent, LaborCost)
}

// Inputs are the numeric fields of a product. Margin is the profit percentage
// under MarginPercent and the labor amount under LaborCost.
type Inputs struct {
	Cost     float64 `json:"cost"`
	Shipping float64 `json:"shipping"`
	TaxRate  float64 `json:"tax_rate"`
	Margin   float64 `json:"margin"`
}

// Breakdown holds every derived value of one computation.
type Breakdown struct {
	Base       float64 `json:"base"`
	WithTax    float64 `json:"with_tax"`
	FinalPrice float64 `json:"final_price"`
}

// Compute derives the price breakdown. It is pure and returns full-precision values.
func (s Strategy) Compute(in Inputs) Breakdown {
	var b Breakdown
	switch s {
	case LaborCost:
		b.Base = in.Cost + in.Shipping + in.Margin
		b.WithTax = b.Base * (1 + in.TaxRate/100)
		b.FinalPrice = b.WithTax
	default:
		b.Base = in.Cost + in.Shipping
		b.WithTax = b.Base * (1 + in.TaxRate/100)
		b.FinalPrice = b.WithTax * (1 + in.Margin/100)
	}
	return b
}

// FinalPrice is a shorthand for Compute(in).FinalPrice.
func (s Strategy) FinalPrice(in Inputs) float64 {
	return s.Compute(in).FinalPrice
}

// FormatPrice renders a currency amount with two decimals and the currency marker.
// Non-finite values, which only legacy rows past the input caps can produce,
// are rendered as is.
func FormatPrice(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprintf("%v %s", v, currencySymbol)
	}
	return decimal.NewFromFloat(v).StringFixed(2) + " " + currencySymbol
}

// Formatted is the display form of a Breakdown.
type Formatted struct {
	Base       string `json:"base"`
	WithTax    string `json:"with_tax"`
	FinalPrice string `json:"final_price"`
}

func (b Breakdown) Format() Formatted {
	return Formatted{
		Base:       FormatPrice(b.Base),
		WithTax:    FormatPrice(b.WithTax),
		FinalPrice: FormatPrice(b.FinalPrice),
	}
}
