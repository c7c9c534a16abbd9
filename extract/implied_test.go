package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImplied(t *testing.T) {
	t.Parallel()

	t.Run("valid amounts", func(t *testing.T) {
		t.Parallel()

		result := Implied("100000", "23832")

		assert.InDelta(t, 0.23832, result.Rate, 1e-12)
		assert.Equal(t, SourceImpliedCalculation, result.Source)
		assert.Equal(t, ConfidenceLow, result.Confidence)
	})

	t.Run("localized amounts", func(t *testing.T) {
		t.Parallel()

		result := Implied("$ 100.000", "Bs. 23.832,50")

		assert.InDelta(t, 0.238325, result.Rate, 1e-12)
	})

	t.Run("invalid amounts", func(t *testing.T) {
		t.Parallel()

		testTable := []struct {
			sent     string
			received string
		}{
			{"0", "500"},
			{"100", "0"},
			{"abc", "500"},
			{"100", ""},
		}

		for _, testCase := range testTable {
			assert.Equal(t, Failed(), Implied(testCase.sent, testCase.received))
		}
	})
}
