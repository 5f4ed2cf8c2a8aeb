// Package config provides configuration models and helpers for report runs.
//
// This file adds a lightweight linter/validator for Report values. It
// performs static checks over a decoded Report and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Report.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "date.primary"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateReport performs static validation / linting of a Report.
//
// It does not mutate the report. Callers may decide whether to treat
// warnings as fatal or not; errors always block the run.
func ValidateReport(r Report) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and log lines will use a generic run name",
		})
	}
	if strings.TrimSpace(r.Input.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.path",
			Message:  "input.path must not be empty",
		})
	}
	if len(r.Input.Delimiter) > 1 {
		// Multi-rune delimiters cannot be fed to encoding/csv.
		if len([]rune(r.Input.Delimiter)) > 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "input.delimiter",
				Message:  fmt.Sprintf("delimiter %q must be a single character", r.Input.Delimiter),
			})
		}
	}
	if strings.TrimSpace(r.Date.Primary) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "date.primary",
			Message:  "date.primary must name the event-date column; rows without any date are dropped",
		})
	}
	if r.Date.Fallback == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "date.fallback",
			Message:  "no fallback date column; rows with an unparseable primary date will be dropped",
		})
	}

	issues = append(issues, validateDemographics(r.Demographics)...)
	issues = append(issues, validateRisks(r.Risks)...)
	issues = append(issues, validatePopulation(r.Population)...)
	issues = append(issues, validateStorage(r.Storage)...)
	issues = append(issues, validateDeDup(r.DeDup)...)

	return issues
}

func validateDemographics(d Demographics) []Issue {
	var issues []Issue

	// Bin edges and labels must agree when either is supplied.
	if len(d.AgeBins) > 0 || len(d.AgeLabels) > 0 {
		if len(d.AgeBins) != len(d.AgeLabels)+1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "demographics.age_bins",
				Message: fmt.Sprintf("age_bins needs exactly len(age_labels)+1 edges; got %d edges for %d labels",
					len(d.AgeBins), len(d.AgeLabels)),
			})
		}
		for i := 1; i < len(d.AgeBins); i++ {
			if d.AgeBins[i] <= d.AgeBins[i-1] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "demographics.age_bins",
					Message:  "age_bins must be strictly increasing",
				})
				break
			}
		}
	}
	return issues
}

func validateRisks(r Risks) []Issue {
	var issues []Issue

	anyCol := r.Alcohol != "" || r.Helmet != "" || r.Seatbelt != ""
	if anyCol && len(r.ValuesYes) == 0 && len(r.ValuesNo) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "risks",
			Message:  "risk columns configured without yes/no token sets; only numeric 0/1 values will classify",
		})
	}
	return issues
}

func validatePopulation(p Population) []Issue {
	var issues []Issue

	if !p.Enabled {
		return issues
	}
	if strings.TrimSpace(p.File) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "population.file",
			Message:  "population join enabled but no file given",
		})
	}
	for path, v := range map[string]string{
		"population.prov_col": p.ProvCol,
		"population.year_col": p.YearCol,
		"population.pop_col":  p.PopCol,
	} {
		if strings.TrimSpace(v) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "population join enabled but column name is empty",
			})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if s.Kind == "" {
		return issues
	}
	known := map[string]struct{}{"sqlite": {}, "postgres": {}}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q (expected sqlite or postgres)", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage sink configured without a DSN",
		})
	}
	return issues
}

func validateDeDup(d DeDup) []Issue {
	var issues []Issue

	if len(d.Keys) == 0 {
		if d.Policy != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "dedup.policy",
				Message:  "dedup policy set but no key columns; de-duplication is disabled",
			})
		}
		return issues
	}
	switch strings.ToLower(strings.TrimSpace(d.Policy)) {
	case "", "keep-first", "keep-last":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dedup.policy",
			Message:  fmt.Sprintf("unknown dedup policy %q (expected keep-first or keep-last)", d.Policy),
		})
	}
	return issues
}
