package currencies

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sig-0/fxbench/storage/types"
)

func TestAmounts_For(t *testing.T) {
	t.Parallel()

	t.Run("default table", func(t *testing.T) {
		t.Parallel()

		amounts := DefaultAmounts()

		assert.Equal(t, 100000.0, amounts.For(CLP))
		assert.Equal(t, 120000.0, amounts.For(COP))
		assert.Equal(t, 50.0, amounts.For(EUR))
		assert.Equal(t, 150.0, amounts.For(PEN))
		assert.Equal(t, float64(DefaultFallbackAmount), amounts.For(BRL))
	})

	t.Run("custom table", func(t *testing.T) {
		t.Parallel()

		amounts := NewAmounts(
			map[types.Currency]float64{
				USD: 200,
				BRL: -1,
			},
			0,
		)

		assert.Equal(t, 200.0, amounts.For(USD))
		assert.Equal(t, float64(DefaultFallbackAmount), amounts.For(BRL))
	})

	t.Run("zero value table", func(t *testing.T) {
		t.Parallel()

		var amounts Amounts

		assert.Equal(t, float64(DefaultFallbackAmount), amounts.For(CLP))
	})
}
