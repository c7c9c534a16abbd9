package competitors

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// newHTMLClient creates a new page client.
// Some sites serve incomplete certificate chains, hence insecure
func newHTMLClient(timeout time.Duration, insecure bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()

	if insecure {
		tr.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Fine to ignore
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}
}

// fetchDocument fetches and parses the page at the given URL
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	// Execute the request
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	// Construct document for parsing
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	return doc, nil
}

// selectionValue returns the value of an input, or the text of any other element
func selectionValue(sel *goquery.Selection) string {
	if value, ok := sel.Attr("value"); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return strings.TrimSpace(sel.Text())
}

// visibleText returns the document text, without scripts and styles.
// Text nodes are joined with spaces, so numbers in neighbouring elements stay apart
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()

	var parts []string

	collectText(body, &parts)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// collectText appends the text nodes under the selection, in document order
func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			*parts = append(*parts, child.Text())

			return
		}

		collectText(child, parts)
	})
}

// embeddedObject cuts the outermost object literal out of a script body,
// ex. `window.__STATE__ = {...};`
func embeddedObject(script string) (string, bool) {
	start := strings.IndexByte(script, '{')
	end := strings.LastIndexByte(script, '}')

	if start < 0 || end <= start {
		return "", false
	}

	return script[start : end+1], true
}
