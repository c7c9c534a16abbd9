package competitors

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

// PageSettings are the table-driven settings of a static page driver
type PageSettings struct {
	// URLs are the per-route page URLs, keyed by the compact route (CLPVES)
	URLs map[string]string

	// URLTemplate is used for routes without a URL, and defaults to the driver
	// URL when no per-route URLs are set. It supports
	// {origin}, {dest}, {amount}, {origin_lower} and {dest_lower}
	URLTemplate string

	// Selector is the CSS selector of the element holding the rate text
	Selector string

	// StateSelector is the CSS selector of a script holding the page state object
	StateSelector string

	// StateFields are the field paths into the page state object
	StateFields []extract.FieldPath

	// SentSelector and ReceivedSelector select the quote amounts (inputs or text)
	SentSelector     string
	ReceivedSelector string

	// Rules are the site text rules, tried before the default ones
	Rules []extract.Rule

	// Insecure skips TLS verification
	Insecure bool
}

// Page is the generic static page driver
type Page struct {
	client   *http.Client
	settings PageSettings

	base
}

// NewPage creates a new instance of the static page driver
func NewPage(s Settings, p PageSettings) (*Page, error) {
	b, err := newBase(s)
	if err != nil {
		return nil, err
	}

	return &Page{
		base:     b,
		settings: p,
		client:   newHTMLClient(b.timeout, p.Insecure),
	}, nil
}

// pageURL resolves the page URL for the request
func (p *Page) pageURL(req types.QuoteRequest) (string, bool) {
	if url, ok := p.settings.URLs[req.Route.String()]; ok {
		return url, true
	}

	template := p.settings.URLTemplate

	if template == "" {
		// a URL table only covers its own routes
		if len(p.settings.URLs) > 0 {
			return "", false
		}

		template = p.url
	}

	replacer := strings.NewReplacer(
		"{origin}", req.Route.Origin.String(),
		"{dest}", req.Route.Destination.String(),
		"{origin_lower}", strings.ToLower(req.Route.Origin.String()),
		"{dest_lower}", strings.ToLower(req.Route.Destination.String()),
		"{amount}", formatAmount(req.Amount),
	)

	return replacer.Replace(template), true
}

func (p *Page) Observe(ctx context.Context, req types.QuoteRequest) ([]extract.Observation, error) {
	url, ok := p.pageURL(req)
	if !ok {
		return nil, unsupported(req.Route, "no page URL")
	}

	doc, err := fetchDocument(ctx, p.client, url)
	if err != nil {
		return nil, err
	}

	return p.observations(doc), nil
}

// observations collects the candidate observations from the page, in priority order
func (p *Page) observations(doc *goquery.Document) []extract.Observation {
	out := make([]extract.Observation, 0, 4)

	if p.settings.Selector != "" {
		if text := strings.TrimSpace(doc.Find(p.settings.Selector).Text()); text != "" {
			out = append(out, extract.TextBlob{
				Content: text,
				Rules:   p.settings.Rules,
			})
		}
	}

	if p.settings.StateSelector != "" && len(p.settings.StateFields) > 0 {
		doc.Find(p.settings.StateSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			raw, ok := embeddedObject(sel.Text())
			if !ok {
				return true
			}

			payload, err := extract.ParsePayload([]byte(raw))
			if err != nil {
				return true
			}

			out = append(out, extract.StructuredPayload{
				Value:  payload,
				Fields: p.settings.StateFields,
			})

			return false
		})
	}

	if p.settings.SentSelector != "" && p.settings.ReceivedSelector != "" {
		var (
			sent     = selectionValue(doc.Find(p.settings.SentSelector).First())
			received = selectionValue(doc.Find(p.settings.ReceivedSelector).First())
		)

		if sent != "" && received != "" {
			out = append(out, extract.AmountPair{
				Sent:     sent,
				Received: received,
			})
		}
	}

	if text := visibleText(doc); text != "" {
		out = append(out, extract.TextBlob{
			Content: text,
			Rules:   p.settings.Rules,
		})
	}

	return out
}
