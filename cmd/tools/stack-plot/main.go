// Command stack-plot renders a .stack file as an HTML page: a scatter of
// the moiré map coloured by stacking code plus a category distribution bar
// chart.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lattice-data/stacking.report/internal/stacking"
)

var (
	input     = flag.String("in", "", "Input .stack file")
	output    = flag.String("out", "stacking.html", "Output HTML file")
	maxPoints = flag.Int("max-points", 50000, "Maximum scatter points (downsampled by stride)")
)

func main() {
	flag.Parse()
	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: stack-plot -in FILE.stack [-out FILE.html]")
		os.Exit(2)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	records, err := stacking.ReadStackFile(*input)
	if err != nil {
		return err
	}

	stride := 1
	if len(records) > *maxPoints {
		stride = int(math.Ceil(float64(len(records)) / float64(*maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(records)/stride+1)
	maxAbs := 1.0
	counts := make(map[stacking.StackingType]int)
	for _, rec := range records {
		counts[rec.Type]++
	}
	for i := 0; i < len(records); i += stride {
		rec := records[i]
		if math.Abs(rec.X) > maxAbs {
			maxAbs = math.Abs(rec.X)
		}
		if math.Abs(rec.Y) > maxAbs {
			maxAbs = math.Abs(rec.Y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{rec.X, rec.Y, rec.Code}})
	}
	pad := maxAbs * 1.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Stacking Registry Map", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stacking Registry Map", Subtitle: fmt.Sprintf("source=%s atoms=%d stride=%d", *input, len(records), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (Å)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (Å)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        6,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725", "#999999"}},
		}),
	)
	scatter.AddSeries("atoms", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	x := make([]string, 0, len(stacking.StackingTypes))
	y := make([]opts.BarData, 0, len(stacking.StackingTypes))
	for _, t := range stacking.StackingTypes {
		x = append(x, string(t))
		y = append(y, opts.BarData{Value: counts[t]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stacking Type Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("atoms", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(scatter, bar)

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	fmt.Printf("wrote %s\n", *output)
	return nil
}
