// Package components defines the garden data model and the ECS components
// used by the live scene.
package components

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// OrganismType classifies how an entry grows in the garden.
type OrganismType uint8

const (
	Bloom   OrganismType = iota // flowering organism, favors a lush (negative) garden
	Sprout                      // neutral seedling
	Remnant                     // decayed layers and cracks, favors a barren (positive) garden
)

// NumOrganismTypes is the number of organism types.
const NumOrganismTypes = 3

var organismTypeNames = [NumOrganismTypes]string{"bloom", "sprout", "remnant"}

// String returns the lowercase name of the type.
func (t OrganismType) String() string {
	if int(t) < len(organismTypeNames) {
		return organismTypeNames[t]
	}
	return fmt.Sprintf("organism(%d)", uint8(t))
}

// ParseOrganismType parses a type name, case-insensitively.
func ParseOrganismType(s string) (OrganismType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range organismTypeNames {
		if n == name {
			return OrganismType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown organism type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t OrganismType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OrganismType) UnmarshalText(b []byte) error {
	parsed, err := ParseOrganismType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Entry is one timestamped emotional record. Entries are created once by the
// ingestion pipeline and never mutated.
type Entry struct {
	ID        string
	Timestamp time.Time
	Intensity float64 // signed, -1..1
	Type      OrganismType
	Primary   Color
	Secondary []Color // at most 2
	Accents   []Color // at most 3
}

// Placement is the fixed position assigned to an entry. Plan view is X/Z; Y is up.
type Placement struct {
	EntryID  string
	Position r3.Vec
}

// PercentileRecord holds the calibrated size of an entry.
type PercentileRecord struct {
	EntryID    string
	Percentile float64 // 0..100
	Scale      float64
}

// Visibility is the per-frame presence of an entry.
type Visibility struct {
	EntryID        string
	Opacity        float64
	GrowthProgress float64
	// Visible is false when the organism must be left out of render output
	// entirely, not just drawn transparent.
	Visible bool
}
