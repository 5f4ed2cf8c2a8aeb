package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"injuryreport/internal/aggregate"
	"injuryreport/internal/config"
)

func TestOpenNoKind(t *testing.T) {
	t.Parallel()

	sink, err := Open(context.Background(), config.Storage{})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if sink != nil {
		t.Fatal("Open() with empty kind returned a sink, want nil")
	}
}

func TestOpenUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), config.Storage{Kind: "oracle"}); err == nil {
		t.Fatal("Open() accepted an unknown kind")
	}
}

func TestSinkStoreSQLite(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "report.db")
	sink, err := Open(context.Background(), config.Storage{
		Kind: "sqlite",
		DB:   config.DBConfig{DSN: dsn, TablePrefix: "rpt_"},
	})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer sink.Close()

	tbl := &aggregate.Table{
		Name:    "province_year",
		Columns: []string{"prov", "year", "cases", "per100k"},
		Rows: [][]any{
			{"กรุงเทพมหานคร", 2018, 2, 0.04},
			{"ระยอง", 2018, 1, nil},
		},
	}
	if err := sink.Store(context.Background(), tbl); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	// A second run must replace, not append.
	if err := sink.Store(context.Background(), tbl); err != nil {
		t.Fatalf("Store() rerun error: %v", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM rpt_province_year").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("row count = %d, want 2", n)
	}

	var per any
	if err := db.QueryRow("SELECT per100k FROM rpt_province_year WHERE prov = 'ระยอง'").Scan(&per); err != nil {
		t.Fatalf("select null cell: %v", err)
	}
	if per != nil {
		t.Errorf("per100k = %v, want NULL", per)
	}
}

func TestColumnType(t *testing.T) {
	t.Parallel()

	rows := [][]any{
		{nil, nil, nil},
		{"a", 1, nil},
	}
	tests := []struct {
		col  int
		want string
	}{
		{0, "TEXT"},
		{1, "BIGINT"},
		{2, "TEXT"},
	}
	for _, tt := range tests {
		if got := columnType(rows, tt.col); got != tt.want {
			t.Errorf("columnType(col %d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}
