package extract

import (
	"github.com/shopspring/decimal"
)

// Implied derives the rate from the raw sent / received amounts of a quote
func Implied(sent, received string) RateResult {
	sentValue, err := Normalize(sent)
	if err != nil {
		return Failed()
	}

	receivedValue, err := Normalize(received)
	if err != nil {
		return Failed()
	}

	if sentValue <= 0 || receivedValue <= 0 {
		return Failed()
	}

	rate := decimal.NewFromFloat(receivedValue).
		Div(decimal.NewFromFloat(sentValue)).
		InexactFloat64()

	if !usable(rate) {
		return Failed()
	}

	return RateResult{
		Rate:       rate,
		Source:     SourceImpliedCalculation,
		Confidence: ConfidenceLow,
	}
}
