// Package loader reads the delimited input table into memory.
//
// The input file may arrive in any of several text encodings (Thai-sourced
// extracts are commonly TIS-620/windows-874 rather than UTF-8), so Load tries
// each configured candidate in order and keeps the first one that decodes and
// parses. The CSV reader is deliberately lenient: LazyQuotes, variable field
// counts, BOM stripping, and header mapping mirror what real surveillance
// exports need. Rows whose width disagrees with the header are skipped and
// counted rather than failing the run; only the failure of every encoding
// candidate is fatal.
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"injuryreport/internal/config"
	"injuryreport/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Result is the outcome of loading one delimited file.
type Result struct {
	// Records holds one Record per data row, keyed by canonical column name.
	Records []records.Record

	// Columns is the canonical header in source order.
	Columns []string

	// RawRows counts data rows seen, including skipped ones.
	RawRows int

	// Skipped counts rows dropped for width or parse problems.
	Skipped int

	// Encoding is the candidate that succeeded.
	Encoding string
}

// Load reads the file at cfg.Path, trying each encoding candidate in order.
// It returns the parsed table or, when every candidate fails, the last error.
func Load(cfg config.Input) (*Result, error) {
	raw, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("loader: open input: %w", err)
	}

	cands := cfg.EncodingCandidates
	if len(cands) == 0 {
		cands = []string{"utf-8"}
	}

	var lastErr error
	for _, name := range cands {
		res, err := parseWith(raw, name, cfg)
		if err != nil {
			lastErr = fmt.Errorf("loader: candidate %q: %w", name, err)
			continue
		}
		res.Encoding = name
		return res, nil
	}
	return nil, lastErr
}

// parseWith decodes raw with the named encoding and parses the result as CSV.
func parseWith(raw []byte, encName string, cfg config.Input) (*Result, error) {
	decoded, err := decode(raw, encName)
	if err != nil {
		return nil, err
	}

	comma := ','
	if cfg.Delimiter != "" {
		comma = []rune(cfg.Delimiter)[0]
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = stripHeaderBOM(header)

	// Canonicalize headers through the optional header map.
	cols := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if mapped, ok := cfg.HeaderMap[name]; ok && mapped != "" {
			name = mapped
		}
		cols[i] = name
	}

	res := &Result{Columns: cols}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line: count and move on.
			res.RawRows++
			res.Skipped++
			continue
		}
		res.RawRows++
		if len(row) != len(cols) {
			res.Skipped++
			continue
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = row[i]
		}
		res.Records = append(res.Records, rec)
	}
	if len(res.Records) == 0 && res.RawRows == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return res, nil
}

// decode converts raw bytes from the named encoding to UTF-8. UTF-8 input is
// validated rather than transformed so that a mis-declared candidate fails
// and the next one gets a chance.
func decode(raw []byte, name string) ([]byte, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	switch norm {
	case "", "utf-8", "utf8", "utf-8-sig":
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("input is not valid UTF-8")
		}
		return raw, nil
	case "cp874", "windows-874", "ms874", "tis-620", "tis620":
		// The Thai codepage goes by names the IANA index does not all
		// recognize.
		return decodeStrict(raw, charmap.Windows874)
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	decoded, err := decodeStrict(raw, enc)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return decoded, nil
}

// decodeStrict fails when the decoder substituted a replacement rune for an
// undefined byte. Charmap decoders do not error on such bytes on their own,
// which would let a wrong candidate silently win.
func decodeStrict(raw []byte, enc encoding.Encoding) ([]byte, error) {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, err
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, fmt.Errorf("input has bytes undefined in this encoding")
	}
	return decoded, nil
}

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func stripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}
