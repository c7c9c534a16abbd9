package extract

import (
	"github.com/sig-0/fxbench/storage/types"
)

// Source is the extraction path that produced a rate
type Source string

const (
	SourceNone               Source = "NONE"
	SourceTextMatch          Source = "TEXT_MATCH"
	SourceStructuredField    Source = "STRUCTURED_FIELD"
	SourceImpliedCalculation Source = "IMPLIED_CALCULATION"
)

func (s Source) String() string {
	return string(s)
}

// Confidence is a coarse quality marker for an extracted rate
type Confidence string

const (
	ConfidenceNone Confidence = "NONE"
	ConfidenceLow  Confidence = "LOW"
	ConfidenceHigh Confidence = "HIGH"
)

func (c Confidence) String() string {
	return string(c)
}

// RateResult is the outcome of a single extraction attempt
type RateResult struct {
	Source     Source     `json:"source"`
	Confidence Confidence `json:"confidence"`
	Rate       float64    `json:"rate"`
}

// Failed returns the sentinel failure result
func Failed() RateResult {
	return RateResult{
		Rate:       0,
		Source:     SourceNone,
		Confidence: ConfidenceNone,
	}
}

// OK returns true if the result carries a usable rate
func (r RateResult) OK() bool {
	return r.Source != SourceNone && r.Rate > 0
}

// QuoteContext is the route and quoted amount an observation belongs to
type QuoteContext struct {
	Route  types.Route
	Amount float64
}

// Observation is a single piece of raw competitor content.
// The set of variants is closed: TextBlob, StructuredPayload and AmountPair,
// passed by value or by pointer
type Observation interface {
	observation()
}

// TextBlob is free text scraped from a competitor page.
// Rules, if set, are tried before the default rule table
type TextBlob struct {
	Content string
	Rules   []Rule
}

// StructuredPayload is a decoded JSON-like document, with the field
// paths to try in order
type StructuredPayload struct {
	Value  any
	Fields []FieldPath
}

// AmountPair is the raw (sent, received) amounts shown for a quote
type AmountPair struct {
	Sent     string
	Received string
}

func (TextBlob) observation()          {}
func (StructuredPayload) observation() {}
func (AmountPair) observation()        {}
