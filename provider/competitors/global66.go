package competitors

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

// global66RouteIDs maps currencies to Global66's route IDs
var global66RouteIDs = map[types.Currency]int{
	currencies.ARS: 86,
	currencies.EUR: 36,
	currencies.USD: 59,
	currencies.BRL: 117,
	currencies.CLP: 134,
	currencies.COP: 137,
	currencies.MXN: 210,
	currencies.PEN: 227,
	currencies.VES: 266,
}

// Global66 is the Global66 public quote API driver
type Global66 struct {
	client *resty.Client

	base
}

// NewGlobal66 creates a new instance of the Global66 driver
func NewGlobal66(s Settings) (*Global66, error) {
	b, err := newBase(s)
	if err != nil {
		return nil, err
	}

	return &Global66{
		base:   b,
		client: newAPIClient(b.timeout),
	}, nil
}

func (g *Global66) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	originID, ok := global66RouteIDs[req.Route.Origin]
	if !ok {
		return nil, unsupported(req.Route, "unknown origin route")
	}

	destinationID, ok := global66RouteIDs[req.Route.Destination]
	if !ok {
		return nil, unsupported(req.Route, "unknown destination route")
	}

	payload, err := getPayload(ctx, g.client, g.url, map[string]string{
		"originRoute":      strconv.Itoa(originID),
		"destinationRoute": strconv.Itoa(destinationID),
		"amount":           formatAmount(req.Amount),
		"way":              "origin",
		"paymentType":      "WIRE_TRANSFER",
	})
	if err != nil {
		return nil, err
	}

	return []extract.Observation{
		extract.StructuredPayload{
			Value: payload,
			Fields: []extract.FieldPath{
				extract.AmountField("quoteData", "destinationAmount"),
				extract.AmountField("amountDestiny"), // legacy response shape
			},
		},
	}, nil
}
