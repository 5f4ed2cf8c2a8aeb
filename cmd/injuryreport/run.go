package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"injuryreport/internal/aggregate"
	"injuryreport/internal/config"
	"injuryreport/internal/loader"
	"injuryreport/internal/metrics"
	"injuryreport/internal/normalize"
	"injuryreport/internal/report"
	"injuryreport/internal/storage"
	"injuryreport/internal/transformer"
	"injuryreport/internal/transformer/builtin"
)

// run executes the whole pipeline: load, transform, normalize, aggregate,
// write, and optionally store.
func run(ctx context.Context, cfg config.Report, verbose bool) error {
	job := cfg.Job

	loadStart := time.Now()
	in, err := loader.Load(cfg.Input)
	metrics.RecordStage(job, "load", err, time.Since(loadStart))
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input.Path, err)
	}
	metrics.RecordRows(job, "raw", int64(in.RawRows))
	metrics.RecordRows(job, "csv_skipped", int64(in.Skipped))
	if verbose {
		log.Printf("load: %d rows (%d skipped), encoding=%s", len(in.Records), in.Skipped, in.Encoding)
	}

	chain := transformer.Chain{builtin.Normalize{}}
	var dedup *builtin.DeDup
	if len(cfg.DeDup.Keys) > 0 {
		dedup = &builtin.DeDup{Keys: cfg.DeDup.Keys, Policy: cfg.DeDup.Policy}
		chain = append(chain, dedup)
	}
	recs := chain.Apply(in.Records)

	normStart := time.Now()
	rows, stats := normalize.New(cfg).Run(recs, in.Columns)
	metrics.RecordStage(job, "normalize", nil, time.Since(normStart))
	if dedup != nil {
		stats.DuplicatesRemoved = dedup.Removed
		metrics.RecordRows(job, "deduped", int64(dedup.Removed))
	}
	metrics.RecordRows(job, "parsed", int64(stats.Parsed))
	metrics.RecordRows(job, "dropped", int64(stats.Dropped))
	if verbose {
		log.Printf("normalize: %d parsed, %d dropped, %d duplicates removed",
			stats.Parsed, stats.Dropped, stats.DuplicatesRemoved)
	}

	pop, err := loadPopulation(cfg)
	if err != nil {
		return err
	}

	ds := aggregate.NewDataset(rows, stats, cfg, pop)

	aggStart := time.Now()
	tables, err := aggregate.RunAll(ctx, ds, cfg.Runtime.AggregationWorkers)
	metrics.RecordStage(job, "aggregate", err, time.Since(aggStart))
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	if verbose {
		log.Printf("aggregate: %d tables produced", len(tables))
	}

	writeStart := time.Now()
	err = writeOutputs(cfg, in, stats, ds, tables)
	metrics.RecordStage(job, "write", err, time.Since(writeStart))
	if err != nil {
		return err
	}
	metrics.RecordTables(job, int64(len(tables)))

	if cfg.Storage.Kind != "" {
		storeStart := time.Now()
		err = storeTables(ctx, cfg, tables)
		metrics.RecordStage(job, "store", err, time.Since(storeStart))
		if err != nil {
			return err
		}
	}
	return nil
}

// loadPopulation reads the optional province-year population table.
func loadPopulation(cfg config.Report) (*aggregate.Population, error) {
	if !cfg.Population.Enabled {
		return nil, nil
	}
	in, err := loader.Load(config.Input{
		Path:               cfg.Population.File,
		EncodingCandidates: cfg.Input.EncodingCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("load population %s: %w", cfg.Population.File, err)
	}
	return aggregate.NewPopulation(in.Records, cfg.Population), nil
}

func writeOutputs(cfg config.Report, in *loader.Result, stats normalize.Stats, ds *aggregate.Dataset, tables []*aggregate.Table) error {
	if _, err := report.WriteTables(cfg.Outputs.Dir, tables); err != nil {
		return err
	}
	if cfg.Outputs.Charts {
		if _, err := report.RenderCharts(cfg.Outputs.FiguresDir, tables); err != nil {
			return err
		}
	}

	summary := report.NewSummary(stats, tables)
	summary.Job = cfg.Job
	summary.Input = cfg.Input.Path
	summary.Encoding = in.Encoding
	summary.SkippedCSVRows = in.Skipped
	summary.YearFilter = cfg.YearFilter
	if cfg.YearFilter != nil {
		n := len(ds.Rows)
		summary.RowsInFilterYear = &n
	}
	_, err := report.WriteSummary(cfg.Outputs.Dir, summary)
	return err
}

func storeTables(ctx context.Context, cfg config.Report, tables []*aggregate.Table) error {
	sink, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer sink.Close()

	for _, tbl := range tables {
		if err := sink.Store(ctx, tbl); err != nil {
			return err
		}
	}
	return nil
}
