package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

var (
	errInvalidPayload   = errors.New("invalid payload")
	errEmptyFieldPath   = errors.New("empty field path")
	errUnknownFieldKind = errors.New("unknown field kind")
)

// FieldKind is the meaning of the value a field path points to
type FieldKind int

const (
	// FieldRate points directly at the rate
	FieldRate FieldKind = iota

	// FieldDestinationAmount points at the amount received for the quoted amount,
	// the rate is value / quoted amount
	FieldDestinationAmount
)

// FieldPath is a single lookup into a structured payload.
// Segments are object keys or array indexes. A key segment applied
// to an array descends into its first element
type FieldPath struct {
	Path []string
	Kind FieldKind
}

// RateField returns a path pointing directly at the rate
func RateField(path ...string) FieldPath {
	return FieldPath{
		Kind: FieldRate,
		Path: path,
	}
}

// AmountField returns a path pointing at the destination amount
func AmountField(path ...string) FieldPath {
	return FieldPath{
		Kind: FieldDestinationAmount,
		Path: path,
	}
}

// ParseFieldPath parses the dotted form, ex. "rate:VES.rate" or "amount:quoteData.destinationAmount".
// The kind prefix is optional and defaults to rate
func ParseFieldPath(raw string) (FieldPath, error) {
	kind := FieldRate

	if prefix, rest, found := strings.Cut(raw, ":"); found {
		switch strings.ToLower(prefix) {
		case "rate":
		case "amount":
			kind = FieldDestinationAmount
		default:
			return FieldPath{}, fmt.Errorf("%w: %q", errUnknownFieldKind, prefix)
		}

		raw = rest
	}

	if strings.TrimSpace(raw) == "" {
		return FieldPath{}, errEmptyFieldPath
	}

	return FieldPath{
		Kind: kind,
		Path: strings.Split(raw, "."),
	}, nil
}

func (f FieldPath) String() string {
	prefix := "rate:"
	if f.Kind == FieldDestinationAmount {
		prefix = "amount:"
	}

	return prefix + strings.Join(f.Path, ".")
}

// ParsePayload decodes a structured payload.
// Strict JSON is tried first, then JSON5 for object literals lifted from page scripts
func ParsePayload(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", errInvalidPayload)
	}

	var value any

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	if err := decoder.Decode(&value); err == nil {
		return value, nil
	}

	if err := json5.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	return value, nil
}

// Resolve walks the field paths in order, and returns the first positive rate found
func Resolve(payload any, fields []FieldPath, originAmount float64) RateResult {
	for _, field := range fields {
		node, ok := lookup(payload, field.Path)
		if !ok {
			continue
		}

		value, ok := numeric(node)
		if !ok || value <= 0 {
			continue
		}

		rate := value

		if field.Kind == FieldDestinationAmount {
			if originAmount <= 0 {
				continue
			}

			rate = value / originAmount
		}

		if !usable(rate) {
			continue
		}

		return RateResult{
			Rate:       rate,
			Source:     SourceStructuredField,
			Confidence: ConfidenceHigh,
		}
	}

	return Failed()
}

// lookup traverses the payload along the path
func lookup(node any, path []string) (any, bool) {
	for _, segment := range path {
		switch current := node.(type) {
		case map[string]any:
			next, ok := current[segment]
			if !ok {
				return nil, false
			}

			node = next
		case []any:
			if len(current) == 0 {
				return nil, false
			}

			idx, err := strconv.Atoi(segment)
			if err != nil {
				// descend into the first element, and apply the key there
				inner, ok := lookup(current[0], []string{segment})
				if !ok {
					return nil, false
				}

				node = inner

				continue
			}

			if idx < 0 || idx >= len(current) {
				return nil, false
			}

			node = current[idx]
		default:
			return nil, false
		}
	}

	return node, node != nil
}

// numeric converts a payload leaf into a float
func numeric(node any) (float64, bool) {
	switch v := node.(type) {
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		// APIs print canonical decimals, a 3-digit fraction is not a thousands group there
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}

		f, err := Normalize(v)

		return f, err == nil
	default:
		return 0, false
	}
}
