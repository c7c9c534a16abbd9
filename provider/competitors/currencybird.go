package competitors

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

// currencyBirdCountries maps currencies to the ISO country CurrencyBird quotes them in
var currencyBirdCountries = map[types.Currency]string{
	currencies.CLP: "CL",
	currencies.ARS: "AR",
	currencies.COP: "CO",
	currencies.PEN: "PE",
	currencies.USD: "US",
	currencies.EUR: "ES",
	currencies.BRL: "BR",
	currencies.MXN: "MX",
}

// CurrencyBird is the CurrencyBird public quote API driver.
// Only CLP origins are quoted
type CurrencyBird struct {
	client *resty.Client

	base
}

// NewCurrencyBird creates a new instance of the CurrencyBird driver
func NewCurrencyBird(s Settings) (*CurrencyBird, error) {
	b, err := newBase(s)
	if err != nil {
		return nil, err
	}

	return &CurrencyBird{
		base:   b,
		client: newAPIClient(b.timeout),
	}, nil
}

func (c *CurrencyBird) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	if req.Route.Origin != currencies.CLP {
		return nil, unsupported(req.Route, "only CLP origins are quoted")
	}

	destinationCountry, ok := currencyBirdCountries[req.Route.Destination]
	if !ok {
		return nil, unsupported(req.Route, "unknown destination country")
	}

	payload, err := getPayload(ctx, c.client, c.url, map[string]string{
		"amount":              formatAmount(req.Amount),
		"quoteType":           "sell",
		"originCountry":       currencyBirdCountries[currencies.CLP],
		"originCurrency":      req.Route.Origin.String(),
		"destinationCountry":  destinationCountry,
		"destinationCurrency": req.Route.Destination.String(),
	})
	if err != nil {
		return nil, err
	}

	return []extract.Observation{
		extract.StructuredPayload{
			Value: payload,
			Fields: []extract.FieldPath{
				extract.AmountField("value"),
				extract.RateField("exchangeRate"),
			},
		},
	}, nil
}
