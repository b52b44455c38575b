package charts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"reviewpipe/internal/core/records"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when a chart would be empty
var ErrNoData = errors.New("charts: no data to plot")

// Size of every rendered figure
var (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// RatingDistribution renders a bar chart of rating counts
func RatingDistribution(s records.Set, ratingColumn, path string) error {
	return bars(LabelCounts(s, ratingColumn), "Rating distribution", "Rating", "Count", false, path)
}

// SentimentDistribution renders a bar chart of sentiment label counts
func SentimentDistribution(s records.Set, column, path string) error {
	return bars(LabelCounts(s, column), "Sentiment distribution", "Sentiment", "Count", false, path)
}

// TopTerms renders the n most frequent tokens as horizontal bars, most frequent on top
func TopTerms(s records.Set, textColumn string, n int, path string) error {
	counts := TermCounts(s, textColumn, n)
	// NominalY draws bottom-up
	for i, j := 0, len(counts)-1; i < j; i, j = i+1, j-1 {
		counts[i], counts[j] = counts[j], counts[i]
	}
	return bars(counts, fmt.Sprintf("Top %d terms", len(counts)), "Frequency", "", true, path)
}

// SentimentTrends renders one daily count line per sentiment label
func SentimentTrends(s records.Set, dateColumn, sentimentColumn, path string) error {
	series := DailyCounts(s, dateColumn, sentimentColumn)
	if len(series) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Sentiment trends"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Reviews"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	for i, ser := range series {
		pts := make(plotter.XYs, len(ser.Days))
		for k, d := range ser.Days {
			pts[k] = plotter.XY{X: float64(d.Unix()), Y: float64(ser.Counts[k])}
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("charts: line %q: %w", ser.Label, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(ser.Label, line, points)
	}
	p.Legend.Top = true
	return save(p, path)
}

func bars(counts []Count, title, xLabel, yLabel string, horizontal bool, path string) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c.N)
		names[i] = c.Label
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	bc, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return fmt.Errorf("charts: bar chart: %w", err)
	}
	bc.Color = plotutil.Color(0)
	bc.LineStyle.Width = vg.Length(0)
	bc.Horizontal = horizontal
	p.Add(bc)
	if horizontal {
		p.NominalY(names...)
	} else {
		p.NominalX(names...)
	}
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("charts: mkdir: %w", err)
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("charts: save %s: %w", path, err)
	}
	return nil
}
