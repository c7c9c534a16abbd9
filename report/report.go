// Package report renders benchmark records as spreadsheets, console tables and charts
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

const (
	// DefaultPrefix is the default report file name prefix
	DefaultPrefix = "benchmark"

	// SheetName is the name of the spreadsheet benchmark sheet
	SheetName = "Benchmark"

	fileTimeLayout = "20060102T150405Z"
)

var errNoChartData = errors.New("no successful records for route")

// Header is the column layout shared by the tabular outputs
var Header = []string{
	"competitor",
	"route",
	"origin_currency",
	"destination_currency",
	"quoted_amount",
	"direct_rate",
	"inverse_rate",
	"timestamp",
	"status",
	"source",
	"confidence",
}

// FileName returns the report file name for the given run start time,
// ex. benchmark_20261016T150405Z.xlsx
func FileName(prefix string, ts time.Time, ext string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return fmt.Sprintf("%s_%s.%s", prefix, ts.UTC().Format(fileTimeLayout), ext)
}

// row returns the textual row for the record, in Header order
func row(r *types.BenchmarkRecord) []string {
	return []string{
		r.Competitor,
		r.Route.String(),
		r.Route.Origin.String(),
		r.Route.Destination.String(),
		extract.Canonical(r.QuotedAmount),
		extract.Canonical(r.DirectRate),
		extract.Canonical(r.InverseRate),
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Status.String(),
		r.Source,
		r.Confidence,
	}
}
