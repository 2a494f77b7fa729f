package app

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/relabs-tech/inertial_motion/internal/capture"
	"github.com/relabs-tech/inertial_motion/internal/config"
	"github.com/relabs-tech/inertial_motion/internal/motion"
)

type transition struct {
	Offset    float64 // seconds since the first sample
	Direction string
}

// replayResult is the pipeline trace of one session under one estimator.
type replayResult struct {
	Strategy    motion.Strategy
	Threshold   float64
	Offsets     []float64
	EnergyH     []float64
	EnergyV     []float64
	Transitions []transition
}

func replaySamples(p motion.Params, samples []capture.Sample) (replayResult, error) {
	pipe, err := motion.New(p)
	if err != nil {
		return replayResult{}, err
	}
	res := replayResult{
		Strategy:  p.Strategy,
		Threshold: p.AccelThreshold,
		Offsets:   make([]float64, 0, len(samples)),
		EnergyH:   make([]float64, 0, len(samples)),
		EnergyV:   make([]float64, 0, len(samples)),
	}
	label := "none"
	for _, s := range samples {
		d, ok := pipe.Add(s.Accel)
		tr := pipe.Last()
		offset := s.Time.Sub(samples[0].Time).Seconds()

		res.Offsets = append(res.Offsets, offset)
		res.EnergyH = append(res.EnergyH, tr.EnergyH)
		res.EnergyV = append(res.EnergyV, tr.EnergyV)
		if l := motion.Label(d, ok); l != label {
			label = l
			res.Transitions = append(res.Transitions, transition{Offset: offset, Direction: l})
		}
	}
	return res, nil
}

// RunReplay runs a stored session through the pipeline with the requested
// estimator ("average", "quantile" or "both"), prints the direction changes
// and writes <out>.png and <out>.html. An empty sessionID lists sessions.
func RunReplay(sessionID, estimator, out string) error {
	cfg := config.Get()
	ctx := context.Background()

	store, err := capture.Open(cfg.CaptureDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if sessionID == "" {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Printf("%s  %-24s %6d samples  %s\n", s.ID, s.Label, s.Samples, s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	}

	var strategies []motion.Strategy
	if estimator == "both" {
		strategies = []motion.Strategy{motion.StrategyAverage, motion.StrategyQuantile}
	} else {
		s, err := motion.ParseStrategy(estimator)
		if err != nil {
			return err
		}
		strategies = []motion.Strategy{s}
	}

	samples, err := store.Samples(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("session %s has no samples", sessionID)
	}
	log.Printf("replay: %d samples from session %s", len(samples), sessionID)

	results := make([]replayResult, 0, len(strategies))
	for _, s := range strategies {
		p := cfg.MotionParams()
		p.Strategy = s
		res, err := replaySamples(p, samples)
		if err != nil {
			return err
		}
		fmt.Printf("[%s]\n", s)
		for _, tr := range res.Transitions {
			fmt.Printf("  %8.3fs  %s\n", tr.Offset, tr.Direction)
		}
		results = append(results, res)
	}

	if out == "" {
		return nil
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := writeEnergyPlot(out+".png", sessionID, results); err != nil {
		return err
	}
	if err := writeEnergyChart(out+".html", sessionID, results); err != nil {
		return err
	}
	log.Printf("replay: wrote %s.png and %s.html", out, out)
	return nil
}

var seriesColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

func writeEnergyPlot(path, sessionID string, results []replayResult) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Session %s - motion energy", sessionID)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Energy (g)"

	i := 0
	for _, res := range results {
		for _, series := range []struct {
			name   string
			values []float64
		}{
			{"horizontal", res.EnergyH},
			{"vertical", res.EnergyV},
		} {
			pts := make(plotter.XYs, len(series.values))
			for j, v := range series.values {
				pts[j] = plotter.XY{X: res.Offsets[j], Y: v}
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("plot %s: %w", series.name, err)
			}
			line.Width = vg.Points(1)
			line.Color = seriesColors[i%len(seriesColors)]
			i++
			p.Add(line)
			p.Legend.Add(fmt.Sprintf("%s %s", res.Strategy, series.name), line)
		}
	}

	if len(results) > 0 && len(results[0].Offsets) > 0 {
		first := results[0]
		threshold, err := plotter.NewLine(plotter.XYs{
			{X: first.Offsets[0], Y: first.Threshold},
			{X: first.Offsets[len(first.Offsets)-1], Y: first.Threshold},
		})
		if err != nil {
			return fmt.Errorf("plot threshold: %w", err)
		}
		threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(threshold)
		p.Legend.Add("threshold", threshold)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func writeEnergyChart(path, sessionID string, results []replayResult) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Motion energy", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Motion energy", Subtitle: "session " + sessionID}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Energy (g)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	if len(results) == 0 {
		return fmt.Errorf("no results to chart")
	}
	x := make([]string, len(results[0].Offsets))
	threshold := make([]opts.LineData, len(x))
	for i, off := range results[0].Offsets {
		x[i] = fmt.Sprintf("%.3f", off)
		threshold[i] = opts.LineData{Value: results[0].Threshold}
	}
	line.SetXAxis(x)

	for _, res := range results {
		h := make([]opts.LineData, len(res.EnergyH))
		v := make([]opts.LineData, len(res.EnergyV))
		for i := range res.EnergyH {
			h[i] = opts.LineData{Value: res.EnergyH[i]}
			v[i] = opts.LineData{Value: res.EnergyV[i]}
		}
		line.AddSeries(fmt.Sprintf("%s horizontal", res.Strategy), h)
		line.AddSeries(fmt.Sprintf("%s vertical", res.Strategy), v)
	}
	line.AddSeries("threshold", threshold,
		charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
	)

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
