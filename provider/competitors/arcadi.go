package competitors

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

// arcadiCountryIDs maps currencies to Arcadi's country IDs
var arcadiCountryIDs = map[types.Currency]int{
	currencies.VES: 1,
	currencies.COP: 2,
	currencies.BRL: 5,
	currencies.EUR: 6,
	currencies.USD: 7,
	currencies.PEN: 8,
	currencies.CLP: 9,
}

// Arcadi is the Arcadi exchange rate API driver
type Arcadi struct {
	client *resty.Client

	base
}

// NewArcadi creates a new instance of the Arcadi driver
func NewArcadi(s Settings) (*Arcadi, error) {
	b, err := newBase(s)
	if err != nil {
		return nil, err
	}

	return &Arcadi{
		base:   b,
		client: newAPIClient(b.timeout),
	}, nil
}

func (a *Arcadi) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	sourceID, ok := arcadiCountryIDs[req.Route.Origin]
	if !ok {
		return nil, unsupported(req.Route, "unknown origin country")
	}

	destinationID, ok := arcadiCountryIDs[req.Route.Destination]
	if !ok {
		return nil, unsupported(req.Route, "unknown destination country")
	}

	payload, err := getPayload(ctx, a.client, a.url, map[string]string{
		"source_country_id":      strconv.Itoa(sourceID),
		"destination_country_id": strconv.Itoa(destinationID),
	})
	if err != nil {
		return nil, err
	}

	// the rates are keyed by destination currency: {"VES": [{"rate": "0.3545"}]}
	return []extract.Observation{
		extract.StructuredPayload{
			Value: payload,
			Fields: []extract.FieldPath{
				extract.RateField(req.Route.Destination.String(), "rate"),
			},
		},
	}, nil
}
