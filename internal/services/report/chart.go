package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/eddiepiper/04-03-DCM-agent/internal/models"
)

// ChartKind selects which portfolio chart to render.
type ChartKind string

const (
	ChartAllocation ChartKind = "allocation"
	ChartSector     ChartKind = "sector"
)

var allocationPalette = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"d97706", // amber-600
	"dc2626", // red-600
	"7c3aed", // violet-600
	"0891b2", // cyan-600
	"db2777", // pink-600
	"65a30d", // lime-600
}

// RenderAllocationChart renders a PNG donut of portfolio weights by symbol,
// with remaining cash as its own slice. Returns raw PNG bytes.
func RenderAllocationChart(p *models.Portfolio) ([]byte, error) {
	if p == nil || p.Len() == 0 {
		return nil, fmt.Errorf("need at least 1 holding to chart")
	}

	weights := p.Weights()
	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	values := make([]chart.Value, 0, len(symbols)+1)
	for i, symbol := range symbols {
		w := weights[symbol]
		if w <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", symbol, w*100),
			Value: w,
			Style: chart.Style{
				FillColor: drawing.ColorFromHex(allocationPalette[i%len(allocationPalette)]),
			},
		})
	}
	if cash := p.CashWeight(); cash > 0.0001 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("Cash %.1f%%", cash*100),
			Value: cash,
			Style: chart.Style{
				FillColor: drawing.ColorFromHex("9ca3af"), // gray-400
			},
		})
	}

	graph := chart.DonutChart{
		Title:  "Portfolio Allocation",
		Width:  600,
		Height: 400,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSectorChart renders a PNG bar chart of sector weights.
func RenderSectorChart(p *models.Portfolio) ([]byte, error) {
	if p == nil || len(p.Metrics.SectorWeights) == 0 {
		return nil, fmt.Errorf("no sector data to chart")
	}

	sectors := make([]string, 0, len(p.Metrics.SectorWeights))
	for sector := range p.Metrics.SectorWeights {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	bars := make([]chart.Value, 0, len(sectors))
	for i, sector := range sectors {
		bars = append(bars, chart.Value{
			Label: sector,
			Value: p.Metrics.SectorWeights[sector] * 100,
			Style: chart.Style{
				FillColor: drawing.ColorFromHex(allocationPalette[i%len(allocationPalette)]),
			},
		})
	}

	graph := chart.BarChart{
		Title:  "Sector Exposure",
		Width:  700,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render sector chart: %w", err)
	}
	return buf.Bytes(), nil
}
