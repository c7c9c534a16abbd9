package report

import (
	"cmp"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sig-0/fxbench/extract"
	"github.com/sig-0/fxbench/storage/types"
)

// RenderTable renders the records as a console table, grouped by route.
// Within a route, the best direct rate (most destination units) comes first
func RenderTable(w io.Writer, records []*types.BenchmarkRecord) {
	sorted := slices.Clone(records)

	slices.SortStableFunc(sorted, func(a, b *types.BenchmarkRecord) int {
		if c := cmp.Compare(a.Route.String(), b.Route.String()); c != 0 {
			return c
		}

		return cmp.Compare(b.DirectRate, a.DirectRate)
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{
		"Route",
		"Competitor",
		"Amount",
		"Direct",
		"Inverse",
		"Source",
		"Confidence",
		"Status",
	})

	for _, r := range sorted {
		t.AppendRow(table.Row{
			r.Route.String(),
			r.Competitor,
			extract.Canonical(r.QuotedAmount),
			extract.Canonical(r.DirectRate),
			extract.Canonical(r.InverseRate),
			r.Source,
			r.Confidence,
			r.Status.String(),
		})
	}

	var failed int

	for _, r := range records {
		if r.Status == types.StatusFailed {
			failed++
		}
	}

	t.AppendFooter(table.Row{"", "", "", "", "", "", "FALLO", failed})

	t.Render()
}
