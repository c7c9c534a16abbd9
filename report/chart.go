package report

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/sig-0/fxbench/storage/types"
)

const (
	chartWidth    = 1280
	chartHeight   = 720
	chartBarWidth = 60

	// chartHeadroom is the Y range slack above the highest bar
	chartHeadroom = 1.1
)

// WriteChart renders a PNG bar chart of the direct rate per competitor,
// for the successful records of the given route
func WriteChart(w io.Writer, route types.Route, records []*types.BenchmarkRecord) error {
	var (
		bars []chart.Value
		peak float64
	)

	for _, r := range records {
		if r.Route != route || r.Status != types.StatusOK {
			continue
		}

		bars = append(bars, chart.Value{
			Label: r.Competitor,
			Value: r.DirectRate,
		})

		peak = max(peak, r.DirectRate)
	}

	if len(bars) == 0 {
		return fmt.Errorf("%w: %s", errNoChartData, route.String())
	}

	rateFormatter := func(v any) string {
		return chart.FloatValueFormatterWithFormat(v, "%.4f")
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s direct rate (%s per %s)", route.String(), route.Destination, route.Origin),
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: chartBarWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			ValueFormatter: rateFormatter,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: peak * chartHeadroom,
			},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("unable to render chart: %w", err)
	}

	return nil
}
