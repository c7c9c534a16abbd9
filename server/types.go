package server

import (
	"encoding/json"

	"github.com/sig-0/fxbench/storage/types"
)

type CompetitorsResponse struct {
	Results []string `json:"results"`
}

type RoutesResponse struct {
	Results []types.Route `json:"results"`
}

// ExtractRequest is a single observation to run through the extraction engine.
// Exactly one of text, payload or sent / received should be set
type ExtractRequest struct {
	Payload  json.RawMessage `json:"payload,omitempty"`
	Route    string          `json:"route"`
	Text     string          `json:"text,omitempty"`
	Sent     string          `json:"sent,omitempty"`
	Received string          `json:"received,omitempty"`
	Fields   []string        `json:"fields,omitempty"`
	Amount   float64         `json:"amount"`
}

type ExtractResponse struct {
	Route      types.Route `json:"route"`
	Source     string      `json:"source"`
	Confidence string      `json:"confidence"`
	Rate       float64     `json:"rate"`
	Inverse    float64     `json:"inverse_rate"`
	Amount     float64     `json:"amount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
