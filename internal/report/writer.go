package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"injuryreport/internal/aggregate"
	"injuryreport/internal/normalize"
)

// WriteTables writes one CSV file per table into dir, creating it as
// needed. Headers come first, missing measure cells are written empty.
// Returns the written file paths in table order.
func WriteTables(dir string, tables []*aggregate.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	paths := make([]string, 0, len(tables))
	for _, tbl := range tables {
		path := filepath.Join(dir, tbl.Name+".csv")
		if err := writeTable(path, tbl); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(path string, tbl *aggregate.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	record := make([]string, len(tbl.Columns))
	for _, row := range tbl.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = aggregate.Cell(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Summary is the QA accounting for one run, written as qa_summary.json.
type Summary struct {
	Job      string `json:"job,omitempty"`
	Input    string `json:"input"`
	Encoding string `json:"encoding"`

	RawRows     int     `json:"rows_raw"`
	ParsedRows  int     `json:"rows_parsed"`
	DroppedRows int     `json:"rows_dropped"`
	ShareParsed float64 `json:"share_parsed"`

	DuplicatesRemoved int  `json:"duplicates_removed"`
	SkippedCSVRows    int  `json:"csv_rows_skipped"`
	YearFilter        *int `json:"year_filter"`

	// RowsInFilterYear is the retained row count after the year filter,
	// present only when a filter is set. ParsedRows stays pre-filter so it
	// matches the raw/parsed share.
	RowsInFilterYear *int `json:"rows_in_filter_year,omitempty"`

	DerivedColumns []string `json:"derived_columns"`
	TablesWritten  []string `json:"tables_written"`
}

// NewSummary assembles the QA summary from the normalization accounting.
// The parsed share is rounded to 4 decimals; an empty input yields zero.
func NewSummary(stats normalize.Stats, tables []*aggregate.Table) Summary {
	s := Summary{
		RawRows:           stats.RawRows,
		ParsedRows:        stats.Parsed,
		DroppedRows:       stats.Dropped,
		DuplicatesRemoved: stats.DuplicatesRemoved,
		DerivedColumns:    stats.Derived,
	}
	if stats.RawRows > 0 {
		s.ShareParsed = round4(float64(stats.Parsed) / float64(stats.RawRows))
	}
	for _, tbl := range tables {
		s.TablesWritten = append(s.TablesWritten, tbl.Name)
	}
	return s
}

// WriteSummary writes the QA summary as indented JSON into dir.
func WriteSummary(dir string, s Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "qa_summary.json")
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode qa summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
