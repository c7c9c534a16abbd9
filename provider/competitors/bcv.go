package competitors

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/provider/currencies"
	"github.com/sig-0/fxbench/storage/types"
)

// bcvSectionIDs maps the origin currencies to the BCV website rate sections
var bcvSectionIDs = map[types.Currency]string{
	currencies.USD: "dolar",
	currencies.EUR: "euro",
}

// bcvRules reads the first number in a rate section as the rate
var bcvRules = []extract.Rule{
	{
		Name:     "bcv section value",
		Kind:     extract.RuleTemplate,
		Template: "{NUMBER}",
	},
}

// BCV is the official BCV website driver, benchmarked as a reference rate.
// Only VES destinations are quoted
type BCV struct {
	client *http.Client

	base
}

// NewBCV creates a new instance of the BCV website driver
func NewBCV(s Settings) (*BCV, error) {
	b, err := newBase(s)
	if err != nil {
		return nil, err
	}

	return &BCV{
		base:   b,
		client: newHTMLClient(b.timeout, true),
	}, nil
}

func (p *BCV) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	if req.Route.Destination != currencies.VES {
		return nil, unsupported(req.Route, "only VES destinations are quoted")
	}

	sectionID, ok := bcvSectionIDs[req.Route.Origin]
	if !ok {
		return nil, unsupported(req.Route, "unknown origin section")
	}

	doc, err := fetchDocument(ctx, p.client, p.url)
	if err != nil {
		return nil, err
	}

	return bcvObservations(doc, sectionID), nil
}

// bcvObservations extracts the rate section text of the given currency
func bcvObservations(doc *goquery.Document, sectionID string) []extract.Observation {
	sel := doc.Find("#" + sectionID)
	if sel.Length() == 0 {
		return nil
	}

	txt := sel.Find(".col-sm-6.col-xs-6.centrado").First().Text()
	if strings.TrimSpace(txt) == "" {
		txt = sel.Find(".centrado").First().Text()
	}

	txt = strings.TrimSpace(txt)
	if txt == "" {
		return nil
	}

	return []extract.Observation{
		extract.TextBlob{
			Content: txt,
			Rules:   bcvRules,
		},
	}
}
