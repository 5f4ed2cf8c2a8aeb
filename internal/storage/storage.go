// Package storage persists produced result tables to a database. The sink is
// optional; runs without a configured backend write files only.
package storage

import (
	"context"
	"fmt"
	"strings"

	"injuryreport/internal/aggregate"
	"injuryreport/internal/config"
	"injuryreport/internal/storage/postgres"
	"injuryreport/internal/storage/sqlite"
)

// Repository is the backend contract: DDL execution plus bulk insert.
type Repository interface {
	Exec(ctx context.Context, sql string) error
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// Sink writes result tables through a Repository, one database table per
// aggregation, recreated on every run.
type Sink struct {
	repo    Repository
	prefix  string
	closeFn func()
}

// Open builds the sink selected by cfg.Kind. An empty kind returns a nil
// sink and no error; callers treat nil as "no database output".
func Open(ctx context.Context, cfg config.Storage) (*Sink, error) {
	switch cfg.Kind {
	case "":
		return nil, nil
	case "sqlite":
		repo, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{DSN: cfg.DB.DSN})
		if err != nil {
			return nil, err
		}
		return &Sink{repo: repo, prefix: cfg.DB.TablePrefix, closeFn: closeFn}, nil
	case "postgres":
		repo, closeFn, err := postgres.NewRepository(ctx, postgres.Config{DSN: cfg.DB.DSN})
		if err != nil {
			return nil, err
		}
		return &Sink{repo: repo, prefix: cfg.DB.TablePrefix, closeFn: closeFn}, nil
	default:
		return nil, fmt.Errorf("storage: unknown kind %q", cfg.Kind)
	}
}

// Store recreates the table for tbl and bulk-inserts its rows.
func (s *Sink) Store(ctx context.Context, tbl *aggregate.Table) error {
	name := s.prefix + tbl.Name
	if err := s.repo.Exec(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("storage: drop %s: %w", name, err)
	}
	if err := s.repo.Exec(ctx, createDDL(name, tbl)); err != nil {
		return fmt.Errorf("storage: create %s: %w", name, err)
	}
	if _, err := s.repo.CopyFrom(ctx, name, tbl.Columns, tbl.Rows); err != nil {
		return fmt.Errorf("storage: insert %s: %w", name, err)
	}
	return nil
}

// Close releases the backend connection.
func (s *Sink) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// createDDL builds a CREATE TABLE statement with column types inferred from
// the first non-nil value in each column. Types are the cross-dialect set
// accepted by both backends.
func createDDL(name string, tbl *aggregate.Table) string {
	defs := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		defs[i] = col + " " + columnType(tbl.Rows, i)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
}

func columnType(rows [][]any, i int) string {
	for _, row := range rows {
		if i >= len(row) || row[i] == nil {
			continue
		}
		switch row[i].(type) {
		case int:
			return "BIGINT"
		case float64:
			return "DOUBLE PRECISION"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}
