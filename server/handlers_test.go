package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/mock"
	"github.com/sig-0/fxbench/storage/types"
)

func TestHandlers_Records(t *testing.T) {
	t.Parallel()

	t.Run("invalid route", func(t *testing.T) {
		t.Parallel()

		var called bool

		storage := &mock.Storage{
			ListRecordsFn: func(
				_ context.Context,
				_ *types.RecordQuery,
			) (*types.Page[*types.BenchmarkRecord], error) {
				called = true

				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/records?route=CLPCLP", http.NoBody)

		w := httptest.NewRecorder()
		s.Records(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/records?status=maybe", http.NoBody)

		w := httptest.NewRecorder()
		s.Records(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, errInvalidStatus.Error(), resp.Error)
	})

	t.Run("invalid run", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/records?run=nope", http.NoBody)

		w := httptest.NewRecorder()
		s.Records(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListRecordsFn: func(
				_ context.Context,
				_ *types.RecordQuery,
			) (*types.Page[*types.BenchmarkRecord], error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/records", http.NoBody)

		w := httptest.NewRecorder()
		s.Records(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var (
			capturedQuery *types.RecordQuery

			runID = xid.New()
			route = types.Route{Origin: types.CurrencyCLP, Destination: types.CurrencyVES}
		)

		storage := &mock.Storage{
			ListRecordsFn: func(
				_ context.Context,
				query *types.RecordQuery,
			) (*types.Page[*types.BenchmarkRecord], error) {
				capturedQuery = query

				return &types.Page[*types.BenchmarkRecord]{
					Results: []*types.BenchmarkRecord{
						types.NewBenchmarkRecord(
							runID,
							"Arcadi",
							types.QuoteRequest{Route: route, Amount: 100000},
							0.04,
							time.Date(2026, time.October, 16, 15, 4, 5, 0, time.UTC),
						),
					},
					Total: 1,
				}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		url := "/v1/records?competitor=Arcadi&route=clpves&status=ok&run=" + runID.String() + "&limit=50&offset=3"
		req := httptest.NewRequest(http.MethodGet, url, http.NoBody)

		w := httptest.NewRecorder()
		s.Records(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page types.Page[*types.BenchmarkRecord]

		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		require.Len(t, page.Results, 1)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, route, page.Results[0].Route)
		assert.Equal(t, runID, page.Results[0].RunID)

		require.NotNil(t, capturedQuery)

		require.NotNil(t, capturedQuery.Competitor)
		assert.Equal(t, "Arcadi", *capturedQuery.Competitor)

		require.NotNil(t, capturedQuery.Route)
		assert.Equal(t, route, *capturedQuery.Route)

		require.NotNil(t, capturedQuery.Status)
		assert.Equal(t, types.StatusOK, *capturedQuery.Status)

		require.NotNil(t, capturedQuery.RunID)
		assert.Equal(t, runID, *capturedQuery.RunID)

		assert.Equal(t, int32(50), capturedQuery.Limit)
		assert.Equal(t, int64(3), capturedQuery.Offset)
	})

	t.Run("no filters", func(t *testing.T) {
		t.Parallel()

		var capturedQuery *types.RecordQuery

		storage := &mock.Storage{
			ListRecordsFn: func(
				_ context.Context,
				query *types.RecordQuery,
			) (*types.Page[*types.BenchmarkRecord], error) {
				capturedQuery = query

				return &types.Page[*types.BenchmarkRecord]{}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/records", http.NoBody)

		w := httptest.NewRecorder()
		s.Records(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, capturedQuery)

		assert.Nil(t, capturedQuery.Competitor)
		assert.Nil(t, capturedQuery.Route)
		assert.Nil(t, capturedQuery.Status)
		assert.Nil(t, capturedQuery.RunID)
		assert.Equal(t, defaultLimit, capturedQuery.Limit)
	})
}

func TestHandlers_ListEndpoints(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		path     string
		handler  func(*Server, http.ResponseWriter, *http.Request)
		expected []string
	}{
		{
			name: "competitors",
			path: "/v1/competitors",
			handler: func(s *Server, w http.ResponseWriter, r *http.Request) {
				s.Competitors(w, r)
			},
			expected: []string{"Arcadi", "Global66"},
		},
		{
			name: "routes",
			path: "/v1/routes",
			handler: func(s *Server, w http.ResponseWriter, r *http.Request) {
				s.Routes(w, r)
			},
			expected: []string{"CLPVES", "EURVES"},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			t.Run("storage error", func(t *testing.T) {
				t.Parallel()

				s := &Server{
					storage: listStorage(t, testCase.name, nil, errors.New("boom")),
					logger:  noopLogger,
				}

				req := httptest.NewRequest(http.MethodGet, testCase.path, http.NoBody)
				w := httptest.NewRecorder()

				testCase.handler(s, w, req)

				assert.Equal(t, http.StatusInternalServerError, w.Code)
			})

			t.Run("success", func(t *testing.T) {
				t.Parallel()

				s := &Server{
					storage: listStorage(t, testCase.name, testCase.expected, nil),
					logger:  noopLogger,
				}

				req := httptest.NewRequest(http.MethodGet, testCase.path, http.NoBody)
				w := httptest.NewRecorder()

				testCase.handler(s, w, req)

				require.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, testCase.expected, decodeListResults(t, w))
			})
		})
	}
}

func TestHandlers_Extract(t *testing.T) {
	t.Parallel()

	s := &Server{
		storage: &mock.Storage{},
		logger:  noopLogger,
		engine:  extract.NewEngine(),
	}

	invalidTable := []struct {
		name string
		body string
	}{
		{
			name: "malformed body",
			body: `{"route":`,
		},
		{
			name: "invalid route",
			body: `{"route":"CLP","amount":100,"text":"1 CLP = 0,04 VES"}`,
		},
		{
			name: "non-positive amount",
			body: `{"route":"CLPVES","amount":0,"text":"1 CLP = 0,04 VES"}`,
		},
		{
			name: "no observation",
			body: `{"route":"CLPVES","amount":100}`,
		},
		{
			name: "multiple observations",
			body: `{"route":"CLPVES","amount":100,"text":"x","sent":"1","received":"2"}`,
		},
		{
			name: "payload without fields",
			body: `{"route":"CLPVES","amount":100,"payload":{"rate":1}}`,
		},
		{
			name: "invalid field kind",
			body: `{"route":"CLPVES","amount":100,"payload":{"rate":1},"fields":["bogus:rate"]}`,
		},
	}

	for _, testCase := range invalidTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			w := postExtract(t, s, testCase.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		w := postExtract(t, s, `{"route":"CLPVES","amount":100000,"text":"Tasa: 4,50"}`)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeExtract(t, w)

		assert.Equal(t, 4.50, resp.Rate)
		assert.InDelta(t, 0.2222, resp.Inverse, 0.0001)
		assert.Equal(t, extract.SourceTextMatch.String(), resp.Source)
		assert.Equal(t, extract.ConfidenceHigh.String(), resp.Confidence)
	})

	t.Run("payload", func(t *testing.T) {
		t.Parallel()

		body := `{
			"route": "CLPVES",
			"amount": 100000,
			"payload": {"quoteData": {"destinationAmount": 3910}},
			"fields": ["amount:quoteData.destinationAmount"]
		}`

		w := postExtract(t, s, body)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeExtract(t, w)

		assert.InDelta(t, 0.0391, resp.Rate, 1e-12)
		assert.Equal(t, extract.SourceStructuredField.String(), resp.Source)
	})

	t.Run("relaxed payload", func(t *testing.T) {
		t.Parallel()

		body := `{
			"route": "EURVES",
			"amount": 50,
			"payload": "{rate: 51.25,}",
			"fields": ["rate:rate"]
		}`

		w := postExtract(t, s, body)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 51.25, decodeExtract(t, w).Rate)
	})

	t.Run("amount pair", func(t *testing.T) {
		t.Parallel()

		w := postExtract(t, s, `{"route":"PENVES","amount":150,"sent":"150","received":"1.875,00"}`)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeExtract(t, w)

		assert.Equal(t, 12.5, resp.Rate)
		assert.Equal(t, extract.SourceImpliedCalculation.String(), resp.Source)
		assert.Equal(t, extract.ConfidenceLow.String(), resp.Confidence)
	})

	t.Run("no rate found", func(t *testing.T) {
		t.Parallel()

		w := postExtract(t, s, `{"route":"CLPVES","amount":100000,"text":"Servicio no disponible"}`)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeExtract(t, w)

		assert.Zero(t, resp.Rate)
		assert.Zero(t, resp.Inverse)
		assert.Equal(t, extract.SourceNone.String(), resp.Source)
	})
}

func TestServer_Routing(t *testing.T) {
	t.Parallel()

	s, err := New(&mock.Storage{
		ListCompetitorsFn: func(_ context.Context) ([]string, error) {
			return []string{"Arcadi"}, nil
		},
	})
	require.NoError(t, err)

	testTable := []struct {
		name     string
		method   string
		path     string
		expected int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"competitors", http.MethodGet, "/v1/competitors", http.StatusOK},
		{"openapi", http.MethodGet, "/openapi.yaml", http.StatusOK},
		{"docs", http.MethodGet, "/docs", http.StatusOK},
		{"extract method", http.MethodGet, "/v1/extract", http.StatusMethodNotAllowed},
		{"unknown", http.MethodGet, "/v1/rates", http.StatusNotFound},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(testCase.method, testCase.path, http.NoBody)
			w := httptest.NewRecorder()

			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, testCase.expected, w.Code)
		})
	}
}

func TestServer_Docs(t *testing.T) {
	t.Parallel()

	s, err := New(&mock.Storage{})
	require.NoError(t, err)

	t.Run("openapi document", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, openAPIPath, http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/yaml; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "title: fxbench API")
		assert.Contains(t, w.Body.String(), "/v1/extract")
	})

	t.Run("redoc page", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, docsPath, http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `spec-url="/openapi.yaml"`)
		assert.Contains(t, w.Body.String(), "<title>fxbench API</title>")
	})
}

func TestUtils_ParseLimitOffset(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		limit, offset, err := parseLimitOffset("", "")

		require.NoError(t, err)
		assert.Equal(t, int32(100), limit)
		assert.Equal(t, int64(0), offset)
	})

	t.Run("clamps limit", func(t *testing.T) {
		t.Parallel()

		limit, offset, err := parseLimitOffset("999", "5")

		require.NoError(t, err)
		assert.Equal(t, int32(500), limit)
		assert.Equal(t, int64(5), offset)
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseLimitOffset("nope", "0")

		assert.ErrorIs(t, err, errInvalidLimit)
	})

	t.Run("negative offset", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseLimitOffset("10", "-1")

		assert.ErrorIs(t, err, errInvalidOffset)
	})
}

func TestUtils_ParseStatus(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		status, err := parseStatus(" ")

		require.NoError(t, err)
		assert.Nil(t, status)
	})

	t.Run("case-insensitive", func(t *testing.T) {
		t.Parallel()

		status, err := parseStatus("fallo")

		require.NoError(t, err)
		require.NotNil(t, status)
		assert.Equal(t, types.StatusFailed, *status)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := parseStatus("PENDING")

		assert.ErrorIs(t, err, errInvalidStatus)
	})
}

func postExtract(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Extract(w, req)

	return w
}

func decodeExtract(t *testing.T, w *httptest.ResponseRecorder) ExtractResponse {
	t.Helper()

	var resp ExtractResponse

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	return resp
}

func listStorage(t *testing.T, kind string, results []string, err error) *mock.Storage {
	t.Helper()

	switch kind {
	case "competitors":
		return &mock.Storage{
			ListCompetitorsFn: func(_ context.Context) ([]string, error) {
				if err != nil {
					return nil, err
				}

				return results, nil
			},
		}
	case "routes":
		return &mock.Storage{
			ListRoutesFn: func(_ context.Context) ([]types.Route, error) {
				if err != nil {
					return nil, err
				}

				routes := make([]types.Route, 0, len(results))

				for _, raw := range results {
					route, parseErr := types.ParseRoute(raw)
					require.NoError(t, parseErr)

					routes = append(routes, route)
				}

				return routes, nil
			},
		}
	default:
		return &mock.Storage{}
	}
}

func decodeListResults(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var resp struct {
		Results []string `json:"results"`
	}

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	return resp.Results
}
