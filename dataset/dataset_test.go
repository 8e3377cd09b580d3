package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/garden/components"
)

const header = "id,timestamp,intensity,type,primary,secondary,accents\n"

func TestRead(t *testing.T) {
	data := header +
		"a,2024-03-01T08:30:00Z,-0.8,bloom,#e85d75,#f6ae2d|#ffd666,#ffffff\n" +
		"b,2024-03-02T21:00:00+02:00,0,Sprout,78be5a,,\n" +
		"c,2024-03-03T12:00:00Z,0.35,remnant,#6e625a,#8c806e,#464048|#a89678|#000000\n"

	got, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []components.Entry{
		{
			ID:        "a",
			Timestamp: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
			Intensity: -0.8,
			Type:      components.Bloom,
			Primary:   components.Color{R: 0xe8, G: 0x5d, B: 0x75},
			Secondary: []components.Color{{R: 0xf6, G: 0xae, B: 0x2d}, {R: 0xff, G: 0xd6, B: 0x66}},
			Accents:   []components.Color{{R: 0xff, G: 0xff, B: 0xff}},
		},
		{
			ID:        "b",
			Timestamp: time.Date(2024, 3, 2, 19, 0, 0, 0, time.UTC),
			Type:      components.Sprout,
			Primary:   components.Color{R: 0x78, G: 0xbe, B: 0x5a},
		},
		{
			ID:        "c",
			Timestamp: time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC),
			Intensity: 0.35,
			Type:      components.Remnant,
			Primary:   components.Color{R: 0x6e, G: 0x62, B: 0x5a},
			Secondary: []components.Color{{R: 0x8c, G: 0x80, B: 0x6e}},
			Accents:   []components.Color{{R: 0x46, G: 0x40, B: 0x48}, {R: 0xa8, G: 0x96, B: 0x78}, {}},
		},
	}

	timeEqual := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, got, timeEqual); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name string
		row  string
		msg  string
	}{
		{"empty id", ",2024-03-01T00:00:00Z,0.5,bloom,#ffffff,,", "empty id"},
		{"bad timestamp", "a,yesterday,0.5,bloom,#ffffff,,", "timestamp"},
		{"bad intensity", "a,2024-03-01T00:00:00Z,lots,bloom,#ffffff,,", "intensity"},
		{"intensity high", "a,2024-03-01T00:00:00Z,1.5,bloom,#ffffff,,", "outside"},
		{"intensity low", "a,2024-03-01T00:00:00Z,-1.01,remnant,#ffffff,,", "outside"},
		{"unknown type", "a,2024-03-01T00:00:00Z,0.5,tree,#ffffff,,", "unknown organism type"},
		{"bad primary", "a,2024-03-01T00:00:00Z,0.5,bloom,#fff,,", "primary"},
		{"too many secondary", "a,2024-03-01T00:00:00Z,0.5,bloom,#ffffff,#000000|#111111|#222222,", "secondary"},
		{"too many accents", "a,2024-03-01T00:00:00Z,0.5,bloom,#ffffff,,#000000|#111111|#222222|#333333", "accents"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := header + "ok,2024-03-01T00:00:00Z,0,sprout,#ffffff,,\n" + tt.row + "\n"
			_, err := Read(strings.NewReader(data))
			if !errors.Is(err, ErrInvalidEntry) {
				t.Fatalf("error = %v, want ErrInvalidEntry", err)
			}
			if !strings.Contains(err.Error(), "row 3") {
				t.Errorf("error %q does not name row 3", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestWriteRead(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := Synthetic(40, 20, start, 7)

	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	path := filepath.Join(t.TempDir(), "entries.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(entries, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestSynthetic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Synthetic(200, 60, start, 42)
	b := Synthetic(200, 60, start, 42)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed differs:\n%s", diff)
	}

	var counts [components.NumOrganismTypes]int
	ids := make(map[string]bool)
	for _, e := range a {
		if _, err := ToRow(e).Entry(); err != nil {
			t.Errorf("%s invalid: %v", e.ID, err)
		}
		if ids[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}
		ids[e.ID] = true
		if e.Timestamp.Before(start) || e.Timestamp.After(start.AddDate(0, 0, 61)) {
			t.Errorf("%s timestamp %v outside span", e.ID, e.Timestamp)
		}
		counts[e.Type]++
	}
	for typ, n := range counts {
		if n == 0 {
			t.Errorf("no %v entries", components.OrganismType(typ))
		}
	}
}
