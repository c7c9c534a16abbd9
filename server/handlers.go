package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/xid"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

const (
	defaultLimit = int32(100)
	maxLimit     = int32(500)

	maxExtractBody = 1 << 20 // 1 MiB
)

var (
	errUnableToFetchRecords     = errors.New("unable to fetch records")
	errUnableToFetchCompetitors = errors.New("unable to fetch competitors")
	errUnableToFetchRoutes      = errors.New("unable to fetch routes")

	errInvalidLimit       = errors.New("invalid limit")
	errInvalidOffset      = errors.New("invalid offset")
	errInvalidStatus      = errors.New("invalid status")
	errInvalidRunID       = errors.New("invalid run id")
	errInvalidBody        = errors.New("invalid request body")
	errInvalidAmount      = errors.New("invalid amount (must be positive)")
	errInvalidObservation = errors.New("exactly one of text, payload or sent/received is required")
	errMissingFields      = errors.New("payload requires at least one field path")
)

func (s *Server) Records(w http.ResponseWriter, r *http.Request) {
	var (
		competitorParam = r.URL.Query().Get("competitor")
		routeParam      = r.URL.Query().Get("route")
		statusParam     = r.URL.Query().Get("status")
		runParam        = r.URL.Query().Get("run")

		limitParam  = r.URL.Query().Get("limit")
		offsetParam = r.URL.Query().Get("offset")
	)

	// Parse the route (optional)
	route, err := parseRoute(routeParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the record status (optional)
	status, err := parseStatus(statusParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the run ID (optional)
	runID, err := parseRunID(runParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.RecordQuery{
		Competitor: parseCompetitor(competitorParam),
		Route:      route,
		Status:     status,
		RunID:      runID,
		Limit:      limit,
		Offset:     offset,
	}

	page, err := s.storage.ListRecords(r.Context(), q)
	if err != nil {
		s.logger.Debug(
			"unable to fetch records",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRecords,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) Competitors(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListCompetitors(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch competitors",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCompetitors,
		)

		return
	}

	resp := &CompetitorsResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Routes(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListRoutes(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch routes",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRoutes,
		)

		return
	}

	resp := &RoutesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

// Extract runs a single observation through the extraction engine.
// A failed extraction is not an error, it yields a NONE result
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExtractBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)

		return
	}

	route, err := types.ParseRoute(req.Route)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, errInvalidAmount)

		return
	}

	obs, err := parseObservation(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	result := s.engine.Extract(obs, extract.QuoteContext{
		Route:  route,
		Amount: req.Amount,
	})

	resp := &ExtractResponse{
		Route:      route,
		Amount:     req.Amount,
		Source:     result.Source.String(),
		Confidence: result.Confidence.String(),
		Rate:       result.Rate,
		Inverse:    types.InverseRate(result.Rate),
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseObservation(req *ExtractRequest) (extract.Observation, error) {
	var (
		hasText    = strings.TrimSpace(req.Text) != ""
		hasPayload = len(req.Payload) > 0 && string(req.Payload) != "null"
		hasPair    = req.Sent != "" || req.Received != ""
	)

	set := 0

	for _, ok := range []bool{hasText, hasPayload, hasPair} {
		if ok {
			set++
		}
	}

	if set != 1 {
		return nil, errInvalidObservation
	}

	switch {
	case hasText:
		return extract.TextBlob{Content: req.Text}, nil
	case hasPair:
		return extract.AmountPair{Sent: req.Sent, Received: req.Received}, nil
	default:
	}

	if len(req.Fields) == 0 {
		return nil, errMissingFields
	}

	fields := make([]extract.FieldPath, 0, len(req.Fields))

	for _, raw := range req.Fields {
		field, err := extract.ParseFieldPath(raw)
		if err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	payload, err := parsePayload(req.Payload)
	if err != nil {
		return nil, err
	}

	return extract.StructuredPayload{
		Value:  payload,
		Fields: fields,
	}, nil
}

// parsePayload decodes the request payload. A JSON string is treated
// as a raw document, so relaxed (JSON5) snippets can be submitted as-is
func parsePayload(raw json.RawMessage) (any, error) {
	var embedded string

	if err := json.Unmarshal(raw, &embedded); err == nil {
		return extract.ParsePayload([]byte(embedded))
	}

	return extract.ParsePayload(raw)
}

func parseCompetitor(v string) *string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}

	return &s
}

func parseRoute(v string) (*types.Route, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}

	route, err := types.ParseRoute(v)
	if err != nil {
		return nil, err
	}

	return &route, nil
}

func parseStatus(v string) (*types.Status, error) {
	s := types.Status(strings.ToUpper(strings.TrimSpace(v)))

	switch s {
	case "":
		return nil, nil
	case types.StatusOK, types.StatusFailed:
		return &s, nil
	default:
		return nil, errInvalidStatus
	}
}

func parseRunID(v string) (*xid.ID, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil, nil
	}

	id, err := xid.FromString(s)
	if err != nil {
		return nil, errInvalidRunID
	}

	return &id, nil
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n)
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return limit, offset, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
