//nolint:tagliatelle // Binance API uses camel case
package competitors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

const (
	binanceAsset     = "USDT"
	binanceTradeType = "SELL" // the customer sells USDT for the destination fiat
	binancePages     = 3
	binancePageRows  = 10
	binanceTopOffers = 12
)

var errNoOffers = errors.New("no valid offers found")

// binanceRequest is the request body for the Binance P2P search API
type binanceRequest struct {
	Asset     string `json:"asset"`
	Fiat      string `json:"fiat"`
	TradeType string `json:"tradeType"`
	Rows      int    `json:"rows"`
	Page      int    `json:"page"`
}

// binanceResponse is the response from the Binance P2P search API
type binanceResponse struct {
	Data []binanceAd `json:"data"`
}

type binanceAd struct {
	Adv        binanceAdv        `json:"adv"`
	Advertiser binanceAdvertiser `json:"advertiser"`
}

type binanceAdv struct {
	Price                string `json:"price"`
	MinSingleTransAmount string `json:"minSingleTransAmount"`
	MaxSingleTransAmount string `json:"maxSingleTransAmount"`
	SurplusAmount        string `json:"surplusAmount"`
	TradableQuantity     string `json:"tradableQuantity"`
}

type binanceAdvertiser struct {
	MonthOrderCount int     `json:"monthOrderCount"`
	MonthFinishRate float64 `json:"monthFinishRate"`
}

type binanceOffer struct {
	price      float64
	minLimit   float64
	maxLimit   float64
	available  float64
	orders     int
	finishRate float64
	quality    float64
}

// offerFilter is a single set of offer quality thresholds
type offerFilter struct {
	minOrders    int
	minFinish    float64
	minAvailable float64
}

var (
	strictFilter  = offerFilter{minOrders: 50, minFinish: 0.95, minAvailable: 50}
	relaxedFilter = offerFilter{minOrders: 20, minFinish: 0.90, minAvailable: 50}
)

// BinanceP2P is the Binance P2P reference driver. USDT stands in for USD:
// the rate is the median price of the best reputable offers
// able to take the quoted amount
type BinanceP2P struct {
	client *resty.Client

	base
}

// NewBinanceP2P creates a new instance of the Binance P2P driver
func NewBinanceP2P(s Settings) (*BinanceP2P, error) {
	b, err := newBase(s)
	if err != nil {
		return nil, err
	}

	client := newAPIClient(b.timeout).
		SetHeader("Content-Type", "application/json")

	return &BinanceP2P{
		base:   b,
		client: client,
	}, nil
}

func (p *BinanceP2P) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	if req.Route.Origin != currencies.USD {
		return nil, unsupported(req.Route, "only USD (USDT) origin is quoted")
	}

	offers, err := p.fetchOffers(ctx, req.Route.Destination)
	if err != nil {
		return nil, err
	}

	price, err := medianPrice(offers, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, req.Route.String())
	}

	return []extract.Observation{
		extract.StructuredPayload{
			Value: map[string]any{
				"median": price,
			},
			Fields: []extract.FieldPath{
				extract.RateField("median"),
			},
		},
	}, nil
}

// fetchOffers queries the first pages of Binance P2P offers for the fiat
func (p *BinanceP2P) fetchOffers(ctx context.Context, fiat types.Currency) ([]binanceOffer, error) {
	offers := make([]binanceOffer, 0, binancePages*binancePageRows)

	for page := 1; page <= binancePages; page++ {
		var apiResp binanceResponse

		resp, err := p.client.R().
			SetContext(ctx).
			SetBody(binanceRequest{
				Asset:     binanceAsset,
				Fiat:      fiat.String(),
				TradeType: binanceTradeType,
				Rows:      binancePageRows,
				Page:      page,
			}).
			SetResult(&apiResp).
			Post(p.url)
		if err != nil {
			return nil, fmt.Errorf("unable to execute POST request: %w", err)
		}

		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode())
		}

		if len(apiResp.Data) == 0 {
			break
		}

		for _, ad := range apiResp.Data {
			if offer, ok := parseOffer(ad); ok {
				offers = append(offers, offer)
			}
		}
	}

	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoOffers, fiat)
	}

	return offers, nil
}

// parseOffer converts the API ad, skipping ads without a price
func parseOffer(ad binanceAd) (binanceOffer, bool) {
	price, ok := parseFloat(ad.Adv.Price)
	if !ok || price <= 0 {
		return binanceOffer{}, false
	}

	var (
		minLimit, _ = parseFloat(ad.Adv.MinSingleTransAmount)
		maxLimit, _ = parseFloat(ad.Adv.MaxSingleTransAmount)
	)

	available, ok := parseFloat(ad.Adv.SurplusAmount)
	if !ok {
		available, _ = parseFloat(ad.Adv.TradableQuantity)
	}

	var (
		finishRate = normalizeFinishRate(ad.Advertiser.MonthFinishRate)
		orders     = ad.Advertiser.MonthOrderCount
	)

	return binanceOffer{
		price:      price,
		minLimit:   minLimit,
		maxLimit:   maxLimit,
		available:  available,
		orders:     orders,
		finishRate: finishRate,
		quality:    wilsonLowerBound(finishRate, orders),
	}, true
}

// medianPrice returns the median price of the best offers for the amount.
// The strict filter is relaxed when it leaves too few offers
func medianPrice(offers []binanceOffer, amount float64) (float64, error) {
	filtered := filterOffers(offers, strictFilter, amount)

	if len(filtered) < binanceTopOffers {
		if relaxed := filterOffers(offers, relaxedFilter, amount); len(relaxed) > len(filtered) {
			filtered = relaxed
		}
	}

	if len(filtered) == 0 {
		// no offer matches the criteria, use them all
		filtered = offers
	}

	if len(filtered) == 0 {
		return 0, errNoOffers
	}

	// best (highest) price first, then the most reputable
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].price != filtered[j].price {
			return filtered[i].price > filtered[j].price
		}

		return filtered[i].quality > filtered[j].quality
	})

	if len(filtered) > binanceTopOffers {
		filtered = filtered[:binanceTopOffers]
	}

	prices := make([]float64, len(filtered))
	for i, offer := range filtered {
		prices[i] = offer.price
	}

	return math.Round(median(prices)*1e4) / 1e4, nil
}

// filterOffers applies the quality and limit thresholds
func filterOffers(offers []binanceOffer, f offerFilter, amount float64) []binanceOffer {
	filtered := make([]binanceOffer, 0, len(offers))

	for _, offer := range offers {
		if offer.orders < f.minOrders || offer.finishRate < f.minFinish {
			continue
		}

		if f.minAvailable > 0 && offer.available > 0 && offer.available < f.minAvailable {
			continue
		}

		// the limits are in fiat
		if amount > 0 {
			fiatAmount := amount * offer.price

			if offer.minLimit > 0 && fiatAmount < offer.minLimit {
				continue
			}

			if offer.maxLimit > 0 && fiatAmount > offer.maxLimit {
				continue
			}
		}

		filtered = append(filtered, offer)
	}

	return filtered
}

// normalizeFinishRate ensures finish rate is 0-1
func normalizeFinishRate(rate float64) float64 {
	if rate <= 0 {
		return 0
	}

	if rate > 1 {
		return rate / 100
	}

	return rate
}

// wilsonLowerBound returns a conservative completion score
func wilsonLowerBound(rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}

	var (
		z           = 1.96
		denominator = 1 + z*z/float64(n)
		center      = rate + z*z/(2*float64(n))
		adjust      = z * math.Sqrt((rate*(1-rate)+z*z/(4*float64(n)))/float64(n))
	)

	return (center - adjust) / denominator
}

// parseFloat parses a plain decimal string
func parseFloat(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}

// median calculates the median of the values, sorting them in place
func median(values []float64) float64 {
	sort.Float64s(values)

	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}

	return values[n/2]
}
