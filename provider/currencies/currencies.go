package currencies

import "github.com/sig-0/fxbench/storage/types"

var (
	ARS types.Currency = "ARS"
	BRL types.Currency = "BRL"
	CLP types.Currency = "CLP"
	COP types.Currency = "COP"
	EUR types.Currency = "EUR"
	MXN types.Currency = "MXN"
	PEN types.Currency = "PEN"
	USD types.Currency = "USD"
	VES types.Currency = "VES"
)

// DefaultFallbackAmount is quoted for origin currencies missing from the amount table
const DefaultFallbackAmount = 100

// Amounts is the per-origin-currency quote amount table.
// Amounts are chosen to be comparable in value across origins
type Amounts struct {
	byCurrency map[types.Currency]float64
	fallback   float64
}

// NewAmounts creates a new amount table.
// Non-positive fallbacks are replaced with DefaultFallbackAmount
func NewAmounts(byCurrency map[types.Currency]float64, fallback float64) Amounts {
	if fallback <= 0 {
		fallback = DefaultFallbackAmount
	}

	table := make(map[types.Currency]float64, len(byCurrency))

	for c, amount := range byCurrency {
		if amount > 0 {
			table[c] = amount
		}
	}

	return Amounts{
		byCurrency: table,
		fallback:   fallback,
	}
}

// DefaultAmounts returns the default quote amounts
func DefaultAmounts() Amounts {
	return NewAmounts(
		map[types.Currency]float64{
			CLP: 100000,
			COP: 120000,
			EUR: 50,
			PEN: 150,
		},
		DefaultFallbackAmount,
	)
}

// For returns the amount to quote for the given origin currency
func (a Amounts) For(origin types.Currency) float64 {
	if amount, ok := a.byCurrency[origin]; ok {
		return amount
	}

	if a.fallback <= 0 {
		return DefaultFallbackAmount
	}

	return a.fallback
}
