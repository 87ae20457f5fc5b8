// Package ingest turns uploaded bank statement CSV files into normalized
// transaction rows. It never fails on a bad row: rows whose date or amount
// cannot be read are dropped and counted.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mpdee-accounts/src/models"
)

// Column aliases, tried in order. Header names are compared after trimming and
// lower-casing.
var (
	dateColumns        = []string{"date", "transaction date"}
	amountColumns      = []string{"amount", "debit", "credit"}
	descriptionColumns = []string{"description", "narrative"}
)

// Row is one usable statement line.
type Row struct {
	Line        int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Raw         models.RawRow
}

// Result holds the rows kept from a statement and how many were dropped.
type Result struct {
	Rows    []Row
	Skipped int
}

// Parse reads a whole statement. Only a read error from r is returned; a file
// with no header or no rows yields an empty Result.
func Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	content := strings.ToValidUTF8(string(data), "\uFFFD")
	content = strings.TrimPrefix(content, "\ufeff")

	cr := csv.NewReader(strings.NewReader(content))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	res := &Result{}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		// An unreadable header leaves nothing to map rows against.
		return res, nil
	}
	columns := normalizeHeader(header)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped++
			continue
		}
		if blankRecord(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		row, ok := parseRecord(columns, rec)
		if !ok {
			res.Skipped++
			continue
		}
		row.Line = line
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func normalizeHeader(header []string) []string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return cols
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseRecord maps rec onto columns and extracts the normalized fields.
func parseRecord(columns, rec []string) (Row, bool) {
	raw := make(models.RawRow, len(columns))
	for i, col := range columns {
		if col == "" {
			continue
		}
		if _, dup := raw[col]; dup {
			continue
		}
		if i < len(rec) {
			raw[col] = strings.TrimSpace(rec[i])
		} else {
			raw[col] = ""
		}
	}

	date, ok := ParseDate(lookup(raw, dateColumns...))
	if !ok {
		return Row{}, false
	}

	amount, ok := rowAmount(raw)
	if !ok {
		return Row{}, false
	}

	return Row{
		Date:        date,
		Description: lookup(raw, descriptionColumns...),
		Amount:      amount,
		Raw:         raw,
	}, true
}

// rowAmount reads the first non-empty amount column, keeping its sign.
func rowAmount(raw models.RawRow) (decimal.Decimal, bool) {
	for _, col := range amountColumns {
		v := raw[col]
		if v == "" {
			continue
		}
		amount, ok := ParseAmount(v)
		if !ok {
			return decimal.Zero, false
		}
		return amount, true
	}
	return decimal.Zero, false
}

// lookup returns the first non-empty value among keys.
func lookup(raw models.RawRow, keys ...string) string {
	for _, k := range keys {
		if v := raw[k]; v != "" {
			return v
		}
	}
	return ""
}
