// Package extract turns raw competitor observations into a single exchange rate.
//
// Drivers hand the Engine one or more Observation values per (competitor, route):
//
//   - TextBlob: free text scraped from a page, matched against an ordered rule table
//   - StructuredPayload: a decoded JSON / JSON5 document, resolved through field paths
//   - AmountPair: the sent and received amounts of a quote, from which the rate is implied
//
// Every path yields a RateResult. A miss is never an error: it is the zero-rate
// result with SourceNone, so callers can try the next candidate observation.
//
// Numbers are normalized with a fixed policy for the decimal-comma / decimal-point
// ambiguity (see Normalize). A lone comma is always read as the decimal mark, so
// "1,000" parses as 1.0. Sites that print thousands with a comma only need their own
// rule table or a structured source.
package extract
