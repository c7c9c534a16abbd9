package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

func TestExtract_Text(t *testing.T) {
	t.Parallel()

	cfg := &extractCfg{
		route:    "CLPVES",
		kind:     kindText,
		logLevel: "error",
	}

	res, err := cfg.extract([]byte("<p>Tasa: 4,50</p>"))
	require.NoError(t, err)

	assert.Equal(t, types.Route{Origin: types.CurrencyCLP, Destination: types.CurrencyVES}, res.Route)
	assert.Equal(t, 4.50, res.Rate)
	assert.InDelta(t, 0.2222, res.Inverse, 0.0001)
	assert.Equal(t, extract.SourceTextMatch.String(), res.Source)

	// The default quote amount for the origin is used
	assert.Equal(t, 100000.0, res.Amount)
}

func TestExtract_JSON(t *testing.T) {
	t.Parallel()

	cfg := &extractCfg{
		route:    "CLPVES",
		kind:     kindJSON,
		fields:   "amount:quoteData.destinationAmount, amount:amountDestiny",
		amount:   1000,
		logLevel: "error",
	}

	res, err := cfg.extract([]byte(`{"amountDestiny": "39,1"}`))
	require.NoError(t, err)

	assert.InDelta(t, 0.0391, res.Rate, 1e-12)
	assert.Equal(t, extract.SourceStructuredField.String(), res.Source)
	assert.Equal(t, 1000.0, res.Amount)
}

func TestExtract_Invalid(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name        string
		cfg         *extractCfg
		expectedErr error
	}{
		{
			name:        "missing route",
			cfg:         &extractCfg{kind: kindText, logLevel: "error"},
			expectedErr: errMissingRoute,
		},
		{
			name:        "invalid route",
			cfg:         &extractCfg{route: "VESVES", kind: kindText, logLevel: "error"},
			expectedErr: types.ErrInvalidRoute,
		},
		{
			name:        "unknown kind",
			cfg:         &extractCfg{route: "CLPVES", kind: "pdf", logLevel: "error"},
			expectedErr: errUnknownKind,
		},
		{
			name:        "json without fields",
			cfg:         &extractCfg{route: "CLPVES", kind: kindJSON, logLevel: "error"},
			expectedErr: errMissingFields,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := testCase.cfg.extract([]byte(`{"rate": 1}`))

			assert.ErrorIs(t, err, testCase.expectedErr)
		})
	}
}

func TestExtract_ReadInput(t *testing.T) {
	t.Parallel()

	t.Run("stdin", func(t *testing.T) {
		t.Parallel()

		raw, err := readInput(stdinPath, strings.NewReader("1 EUR = 950,50 CLP"))

		require.NoError(t, err)
		assert.Equal(t, "1 EUR = 950,50 CLP", string(raw))
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.txt")
		require.NoError(t, os.WriteFile(path, []byte("Tasa: 4,50"), 0o600))

		raw, err := readInput(path, nil)

		require.NoError(t, err)
		assert.Equal(t, "Tasa: 4,50", string(raw))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := readInput(filepath.Join(t.TempDir(), "missing.txt"), nil)

		assert.Error(t, err)
	})
}
