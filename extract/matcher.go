package extract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sig-0/fxbench/storage/types"
)

// RuleKind is the matching strategy of a text rule
type RuleKind int

const (
	// RuleTemplate matches a single {NUMBER} inside a template, ex. "1 {ORIGIN} = {NUMBER} {DEST}"
	RuleTemplate RuleKind = iota

	// RuleConversion matches two amounts with their currency tokens,
	// ex. "{NUMBER} {CCY} {ARROW} {NUMBER} {CCY}"
	RuleConversion

	// RuleScan takes the first number-like substring inside the plausibility band
	RuleScan
)

// Template placeholders
const (
	placeholderOne    = "{ONE}"
	placeholderNumber = "{NUMBER}"
	placeholderOrigin = "{ORIGIN}"
	placeholderDest   = "{DEST}"
	placeholderCCY    = "{CCY}"
	placeholderArrow  = "{ARROW}"
)

const (
	numberPattern = `\d[\d.,]*\d|\d`
	onePattern    = `(?:^|[^\d.,])1(?:[.,]0+)?`
	arrowPattern  = `(?:=|≈|→|->|=>|⇒|\bto\b|\ba\b|\bpor\b|\bequivale a\b)`
)

// numberGroup prefixes the named group each {NUMBER} placeholder is captured in
const numberGroup = "num"

var numberRe = regexp.MustCompile(numberPattern)

// ErrInvalidRule is returned for rules whose template does not compile,
// or carries the wrong number of {NUMBER} placeholders for its kind
var ErrInvalidRule = errors.New("invalid rule")

// Rule is a single text matching rule.
// Templates are regular expressions with placeholders, matched case-insensitively.
// A space in the template matches any run of whitespace
type Rule struct {
	Name     string
	Template string
	Kind     RuleKind

	// Inverse marks templates where the captured number is destination -> origin
	Inverse bool
}

// Validate checks the rule template compiles and captures the numbers its kind reads
func (r Rule) Validate() error {
	if r.Kind == RuleScan {
		return nil
	}

	if strings.TrimSpace(r.Template) == "" {
		return fmt.Errorf("%w: %q has no template", ErrInvalidRule, r.Name)
	}

	want := 1
	if r.Kind == RuleConversion {
		want = 2
	}

	if got := strings.Count(r.Template, placeholderNumber); got != want {
		return fmt.Errorf(
			"%w: %q has %d %s placeholders, expected %d",
			ErrInvalidRule,
			r.Name,
			got,
			placeholderNumber,
			want,
		)
	}

	sample := types.Route{
		Origin:      types.CurrencyUSD,
		Destination: types.CurrencyEUR,
	}

	if _, err := NewMatcher(nil, DefaultBand).compile(r.Template, sample); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidRule, r.Name, err)
	}

	return nil
}

// DefaultRules returns the generic rule table, ordered by priority
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "unit origin equals destination",
			Kind:     RuleTemplate,
			Template: "{ONE} {ORIGIN} = {NUMBER} {DEST}",
		},
		{
			Name:     "destination equals unit origin",
			Kind:     RuleTemplate,
			Template: "{NUMBER} {DEST} = {ONE} {ORIGIN}",
		},
		{
			Name:     "unit destination equals origin",
			Kind:     RuleTemplate,
			Template: "{ONE} {DEST} = {NUMBER} {ORIGIN}",
			Inverse:  true,
		},
		{
			Name:     "labelled rate",
			Kind:     RuleTemplate,
			Template: `(?:exchange rate|tipo de cambio|tasa(?: de cambio| actual| del d[ií]a)?) (?::|=)? {NUMBER}`,
		},
		{
			Name:     "amount conversion",
			Kind:     RuleConversion,
			Template: "{NUMBER} {CCY} {ARROW} {NUMBER} {CCY}",
		},
		{
			Name: "plausible number scan",
			Kind: RuleScan,
		},
	}
}

// DefaultAliases returns the local names a currency is printed as, besides its code
func DefaultAliases() map[types.Currency][]string {
	return map[types.Currency][]string{
		types.CurrencyVES: {"Bs.S", "Bs.", "Bs", "VED", "Bolívares", "Bolivares", "Bolívar", "Bolivar"},
		types.CurrencyCLP: {"Pesos chilenos", "Peso chileno", "Pesos", "Peso"},
		types.CurrencyCOP: {"Pesos colombianos", "Peso colombiano", "Pesos", "Peso"},
		types.CurrencyARS: {"Pesos argentinos", "Peso argentino", "Pesos", "Peso"},
		types.CurrencyMXN: {"Pesos mexicanos", "Peso mexicano", "Pesos", "Peso"},
		types.CurrencyPEN: {"Soles", "Sol", "S/."},
		types.CurrencyBRL: {"Reais", "Reales", "Real", "R$"},
		types.CurrencyEUR: {"Euros", "Euro", "€"},
		types.CurrencyUSD: {"Dólares", "Dolares", "Dólar", "Dolar", "US$"},
	}
}

// Band is the inclusive plausibility band for scanned numbers
type Band struct {
	Min float64
	Max float64
}

// DefaultBand is the scan plausibility band
var DefaultBand = Band{
	Min: 0.001,
	Max: 1000,
}

// Contains returns true if the value lies inside the band
func (b Band) Contains(value float64) bool {
	return value >= b.Min && value <= b.Max
}

// Matcher applies ordered rule tables to free text
type Matcher struct {
	aliases map[types.Currency][]string
	band    Band
}

// NewMatcher creates a new text matcher with the given alias table and scan band
func NewMatcher(aliases map[types.Currency][]string, band Band) *Matcher {
	if aliases == nil {
		aliases = DefaultAliases()
	}

	return &Matcher{
		aliases: aliases,
		band:    band,
	}
}

// Match locates the rate for the given route in the text.
// Rules are tried in order, the first one yielding a finite positive rate wins.
// Within a rule, the first match in document order wins
func (m *Matcher) Match(text string, route types.Route, rules []Rule) RateResult {
	if strings.TrimSpace(text) == "" {
		return Failed()
	}

	text = collapseSpaces(text)

	for _, rule := range rules {
		var (
			rate float64
			ok   bool
		)

		switch rule.Kind {
		case RuleTemplate:
			rate, ok = m.matchTemplate(text, route, rule)
		case RuleConversion:
			rate, ok = m.matchConversion(text, route, rule)
		case RuleScan:
			rate, ok = m.scan(text)
		}

		if !ok {
			continue
		}

		confidence := ConfidenceHigh
		if rule.Kind == RuleScan {
			confidence = ConfidenceLow
		}

		return RateResult{
			Rate:       rate,
			Source:     SourceTextMatch,
			Confidence: confidence,
		}
	}

	return Failed()
}

func (m *Matcher) matchTemplate(text string, route types.Route, rule Rule) (float64, bool) {
	re, err := m.compile(rule.Template, route)
	if err != nil {
		return 0, false
	}

	idx := re.SubexpIndex(numberGroup + "1")
	if idx < 0 {
		return 0, false
	}

	for _, groups := range re.FindAllStringSubmatch(text, -1) {
		if groups[idx] == "" {
			continue
		}

		value, err := Normalize(groups[idx])
		if err != nil {
			continue
		}

		if rule.Inverse {
			if value <= 0 {
				continue
			}

			value = 1 / value
		}

		if usable(value) {
			return value, true
		}
	}

	return 0, false
}

func (m *Matcher) matchConversion(text string, route types.Route, rule Rule) (float64, bool) {
	re, err := m.compile(rule.Template, route)
	if err != nil {
		return 0, false
	}

	first, second := re.SubexpIndex(numberGroup+"1"), re.SubexpIndex(numberGroup+"2")
	if first < 0 || second < 0 {
		return 0, false
	}

	for _, groups := range re.FindAllStringSubmatch(text, -1) {
		var tokens []string

		for _, name := range []string{"ccy1", "ccy2"} {
			if i := re.SubexpIndex(name); i >= 0 && groups[i] != "" {
				tokens = append(tokens, groups[i])
			}
		}

		a, errA := Normalize(groups[first])
		b, errB := Normalize(groups[second])

		if errA != nil || errB != nil || a <= 0 || b <= 0 {
			continue
		}

		// explicit {ORIGIN} / {DEST} templates carry no tokens
		from, to := route.Origin, route.Destination
		if len(tokens) == 2 {
			from = m.resolveToken(tokens[0], route)
			to = m.resolveToken(tokens[1], route)
		}

		var rate float64

		switch {
		case from == route.Origin && to == route.Destination:
			rate = b / a
		case from == route.Destination && to == route.Origin:
			rate = a / b
		default:
			continue
		}

		if usable(rate) {
			return rate, true
		}
	}

	return 0, false
}

func (m *Matcher) scan(text string) (float64, bool) {
	for _, candidate := range numberRe.FindAllString(text, -1) {
		value, err := Normalize(candidate)
		if err != nil {
			continue
		}

		if usable(value) && m.band.Contains(value) {
			return value, true
		}
	}

	return 0, false
}

// compile expands the template placeholders for the given route
func (m *Matcher) compile(template string, route types.Route) (*regexp.Regexp, error) {
	var (
		b      strings.Builder
		rest   = template
		ccyIdx int
		numIdx int
	)

	b.WriteString("(?i)")

	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(expandLiteral(rest))

			break
		}

		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(expandLiteral(rest))

			break
		}

		b.WriteString(expandLiteral(rest[:open]))

		placeholder := rest[open : open+end+1]

		switch placeholder {
		case placeholderOne:
			b.WriteString(onePattern)
		case placeholderNumber:
			numIdx++

			b.WriteString("(?P<" + numberGroup + strconv.Itoa(numIdx) + ">")
			b.WriteString(numberPattern)
			b.WriteString(")")
		case placeholderOrigin:
			b.WriteString(m.currencyPattern(route.Origin))
		case placeholderDest:
			b.WriteString(m.currencyPattern(route.Destination))
		case placeholderCCY:
			ccyIdx++

			b.WriteString("(?P<ccy" + strconv.Itoa(ccyIdx) + ">")
			b.WriteString(m.currencyPattern(route.Origin, route.Destination))
			b.WriteString(")")
		case placeholderArrow:
			b.WriteString(arrowPattern)
		default:
			b.WriteString(expandLiteral(placeholder))
		}

		rest = rest[open+end+1:]
	}

	return regexp.Compile(b.String())
}

// currencyPattern builds a non-capturing alternation of the currency codes and aliases
func (m *Matcher) currencyPattern(currencies ...types.Currency) string {
	alternatives := make([]string, 0)

	for _, c := range currencies {
		for _, token := range m.tokens(c) {
			quoted := regexp.QuoteMeta(token)

			last := []rune(token)[len([]rune(token))-1]
			if unicode.IsLetter(last) || unicode.IsDigit(last) {
				quoted += `\b`
			}

			alternatives = append(alternatives, quoted)
		}
	}

	return "(?:" + strings.Join(alternatives, "|") + ")"
}

// tokens returns the code and the aliases of a currency, longest first
func (m *Matcher) tokens(c types.Currency) []string {
	out := append([]string{c.String()}, m.aliases[c]...)

	// longer aliases need to win the alternation ("Bs.S" before "Bs")
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	return out
}

// resolveToken maps a matched currency token back to the route currency it names.
// The origin is checked first, so shared aliases ("Pesos") resolve to it
func (m *Matcher) resolveToken(token string, route types.Route) types.Currency {
	for _, c := range []types.Currency{route.Origin, route.Destination} {
		for _, candidate := range m.tokens(c) {
			if strings.EqualFold(candidate, token) {
				return c
			}
		}
	}

	return ""
}

// expandLiteral makes a space in the literal match any whitespace run
func expandLiteral(literal string) string {
	return strings.ReplaceAll(literal, " ", `\s*`)
}

// collapseSpaces folds non-breaking and repeated whitespace into single spaces
func collapseSpaces(text string) string {
	return strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
}

func usable(value float64) bool {
	return value > 0 && !math.IsInf(value, 0) && !math.IsNaN(value)
}
