package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"injuryreport/internal/aggregate"
)

// chartFunc renders one table to a writer, or reports false when the table
// has nothing chartable (for example, no rows).
type chartFunc func(tbl *aggregate.Table, f *os.File) (bool, error)

// chartable maps table names to their figure renderers. Tables without an
// entry produce CSV only.
var chartable = map[string]chartFunc{
	"national_quarter":  barFirstLast,
	"bkk_top_districts": barFirstLast,
	"top10_provinces":   topProvincesBar,
	"mode_mix_bkk_year": modeMixBar,
	"hour_of_day":       hourLine,
}

// RenderCharts writes a PNG per chartable produced table into dir and
// returns the written paths.
func RenderCharts(dir string, tables []*aggregate.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create figures dir %s: %w", dir, err)
	}
	var paths []string
	for _, tbl := range tables {
		render, ok := chartable[tbl.Name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, tbl.Name+".png")
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		drawn, err := render(tbl, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", path, err)
		}
		if !drawn {
			os.Remove(path)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// barFirstLast draws a bar chart using each row's first column as the label
// and last column as the value. Fits the label+count tables.
func barFirstLast(tbl *aggregate.Table, f *os.File) (bool, error) {
	var bars []chart.Value
	for _, row := range tbl.Rows {
		v, ok := toFloat(row[len(row)-1])
		if !ok {
			continue
		}
		bars = append(bars, chart.Value{Label: aggregate.Cell(row[0]), Value: v})
	}
	return drawBars(tbl.Name, bars, f)
}

// topProvincesBar labels bars by province; the value is the cases column.
func topProvincesBar(tbl *aggregate.Table, f *os.File) (bool, error) {
	var bars []chart.Value
	for _, row := range tbl.Rows {
		v, ok := toFloat(row[2])
		if !ok {
			continue
		}
		bars = append(bars, chart.Value{Label: aggregate.Cell(row[0]), Value: v})
	}
	return drawBars(tbl.Name, bars, f)
}

// modeMixBar charts the latest year's case counts by vehicle type.
func modeMixBar(tbl *aggregate.Table, f *os.File) (bool, error) {
	latest := 0
	for _, row := range tbl.Rows {
		if y, ok := row[0].(int); ok && y > latest {
			latest = y
		}
	}
	var bars []chart.Value
	for _, row := range tbl.Rows {
		if y, _ := row[0].(int); y != latest {
			continue
		}
		v, ok := toFloat(row[2])
		if !ok {
			continue
		}
		bars = append(bars, chart.Value{Label: aggregate.Cell(row[1]), Value: v})
	}
	return drawBars(fmt.Sprintf("%s %d", tbl.Name, latest), bars, f)
}

// hourLine draws cases by hour of day as a line, summing over years.
func hourLine(tbl *aggregate.Table, f *os.File) (bool, error) {
	byHour := map[int]float64{}
	for _, row := range tbl.Rows {
		h, ok := row[0].(int)
		if !ok {
			continue
		}
		if v, ok := toFloat(row[2]); ok {
			byHour[h] += v
		}
	}
	if len(byHour) < 2 {
		return false, nil
	}
	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	xs := make([]float64, len(hours))
	ys := make([]float64, len(hours))
	for i, h := range hours {
		xs[i] = float64(h)
		ys[i] = byHour[h]
	}
	graph := chart.Chart{
		Title:  tbl.Name,
		Width:  1024,
		Height: 512,
		XAxis:  chart.XAxis{Name: "hour"},
		YAxis:  chart.YAxis{Name: "cases"},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		return false, err
	}
	return true, nil
}

func drawBars(title string, bars []chart.Value, f *os.File) (bool, error) {
	if len(bars) == 0 {
		return false, nil
	}
	bc := chart.BarChart{
		Title:    title,
		Width:    1024,
		Height:   512,
		BarWidth: 40,
		Bars:     bars,
	}
	if err := bc.Render(chart.PNG, f); err != nil {
		return false, err
	}
	return true, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
