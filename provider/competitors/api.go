package competitors

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sig-0/fxbench/extract"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// newAPIClient creates a new JSON API client
func newAPIClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
}

// getPayload executes a GET request, and decodes the structured response
func getPayload(
	ctx context.Context,
	client *resty.Client,
	url string,
	params map[string]string,
) (any, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode())
	}

	payload, err := extract.ParsePayload(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	return payload, nil
}
