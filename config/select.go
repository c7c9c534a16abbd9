package config

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// minNameSimilarity is the minimum Jaro-Winkler similarity for a fuzzy name match
const minNameSimilarity = 0.85

// FindCompetitor looks up the competitor by name.
// Exact (case-insensitive) matches win, otherwise the closest name
// above the similarity threshold is returned
func (c *Config) FindCompetitor(name string) (*CompetitorConfig, error) {
	name = strings.TrimSpace(name)

	var (
		best      *CompetitorConfig
		bestScore float64
	)

	for i := range c.Competitors {
		candidate := &c.Competitors[i]

		if strings.EqualFold(candidate.Name, name) {
			return candidate, nil
		}

		score := matchr.JaroWinkler(strings.ToLower(candidate.Name), strings.ToLower(name), false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if best == nil || bestScore < minNameSimilarity {
		return nil, fmt.Errorf("%w: unknown name %q", ErrInvalidCompetitor, name)
	}

	return best, nil
}

// Select keeps only the named competitors, in the given order.
// Selected competitors are enabled, even if disabled in the configuration
func (c *Config) Select(names []string) error {
	if len(names) == 0 {
		return nil
	}

	selected := make([]CompetitorConfig, 0, len(names))

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}

		found, err := c.FindCompetitor(name)
		if err != nil {
			return err
		}

		picked := *found
		picked.Disabled = false

		selected = append(selected, picked)
	}

	c.Competitors = selected

	return nil
}
