// Package dataset reads mood entries from CSV.
//
// Each row holds id, timestamp (RFC 3339), intensity in [-1,1], organism type
// and hex colors. Multi-color columns separate colors with '|'.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/garden/components"
)

const (
	MaxSecondary = 2
	MaxAccents   = 3
)

// ErrInvalidEntry is wrapped by every row validation error.
var ErrInvalidEntry = errors.New("invalid entry")

// Row is one CSV record before validation.
type Row struct {
	ID        string `csv:"id"`
	Timestamp string `csv:"timestamp"`
	Intensity string `csv:"intensity"`
	Type      string `csv:"type"`
	Primary   string `csv:"primary"`
	Secondary string `csv:"secondary"`
	Accents   string `csv:"accents"`
}

// Load reads entries from a CSV file.
func Load(path string) ([]components.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Read parses and validates entries in input order. Row numbers in errors
// count the header as row 1.
func Read(r io.Reader) ([]components.Entry, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}

	entries := make([]components.Entry, 0, len(rows))
	for i, row := range rows {
		e, err := row.Entry()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Entry validates the row and converts it.
func (r Row) Entry() (components.Entry, error) {
	e := components.Entry{ID: strings.TrimSpace(r.ID)}
	if e.ID == "" {
		return e, fmt.Errorf("%w: empty id", ErrInvalidEntry)
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(r.Timestamp))
	if err != nil {
		return e, fmt.Errorf("%w: timestamp: %v", ErrInvalidEntry, err)
	}
	e.Timestamp = ts

	e.Intensity, err = strconv.ParseFloat(strings.TrimSpace(r.Intensity), 64)
	if err != nil {
		return e, fmt.Errorf("%w: intensity: %v", ErrInvalidEntry, err)
	}
	if e.Intensity < -1 || e.Intensity > 1 {
		return e, fmt.Errorf("%w: intensity %v outside [-1,1]", ErrInvalidEntry, e.Intensity)
	}

	e.Type, err = components.ParseOrganismType(r.Type)
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	e.Primary, err = components.ParseHexColor(r.Primary)
	if err != nil {
		return e, fmt.Errorf("%w: primary: %v", ErrInvalidEntry, err)
	}
	if e.Secondary, err = parseColors(r.Secondary, MaxSecondary); err != nil {
		return e, fmt.Errorf("%w: secondary: %v", ErrInvalidEntry, err)
	}
	if e.Accents, err = parseColors(r.Accents, MaxAccents); err != nil {
		return e, fmt.Errorf("%w: accents: %v", ErrInvalidEntry, err)
	}
	return e, nil
}

func parseColors(s string, limit int) ([]components.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "|")
	if len(parts) > limit {
		return nil, fmt.Errorf("%d colors, at most %d allowed", len(parts), limit)
	}
	out := make([]components.Color, len(parts))
	for i, p := range parts {
		c, err := components.ParseHexColor(p)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ToRow converts an entry back into its CSV form.
func ToRow(e components.Entry) Row {
	return Row{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Intensity: strconv.FormatFloat(e.Intensity, 'f', -1, 64),
		Type:      e.Type.String(),
		Primary:   e.Primary.Hex(),
		Secondary: joinColors(e.Secondary),
		Accents:   joinColors(e.Accents),
	}
}

func joinColors(cs []components.Color) string {
	hex := make([]string, len(cs))
	for i, c := range cs {
		hex[i] = c.Hex()
	}
	return strings.Join(hex, "|")
}

// Write writes entries as CSV with a header.
func Write(w io.Writer, entries []components.Entry) error {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = ToRow(e)
	}
	return gocsv.Marshal(rows, w)
}
