package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/random"
)

// palettes are the colors synthetic entries draw from, per organism type.
var palettes = [components.NumOrganismTypes][]components.Color{
	components.Bloom: {
		{R: 232, G: 93, B: 117}, {R: 246, G: 174, B: 45}, {R: 180, G: 120, B: 220}, {R: 255, G: 214, B: 102},
	},
	components.Sprout: {
		{R: 120, G: 190, B: 90}, {R: 160, G: 210, B: 120}, {R: 90, G: 160, B: 110},
	},
	components.Remnant: {
		{R: 110, G: 98, B: 90}, {R: 140, G: 128, B: 110}, {R: 70, G: 64, B: 72}, {R: 168, G: 150, B: 120},
	},
}

// Synthetic generates n entries spread over days starting at start. The mood
// drifts slowly so the garden swings between lush and barren stretches. The
// same seed always produces the same entries.
func Synthetic(n, days int, start time.Time, seed uint32) []components.Entry {
	if days < 1 {
		days = 1
	}
	s := random.New(seed)
	out := make([]components.Entry, n)
	span := time.Duration(days) * 24 * time.Hour
	for i := range out {
		frac := float64(i) / math.Max(1, float64(n))
		ts := start.Add(time.Duration(frac * float64(span))).
			Add(time.Duration(s.Range(0, 3)) * time.Hour).
			Truncate(time.Second)

		mood := 0.7*math.Sin(2*math.Pi*frac*3) + 0.4*s.Signed()
		intensity := math.Max(-1, math.Min(1, mood))

		typ := components.Sprout
		switch {
		case intensity < -0.2:
			typ = components.Bloom
		case intensity > 0.2:
			typ = components.Remnant
		}

		pal := palettes[typ]
		e := components.Entry{
			ID:        fmt.Sprintf("syn-%05d", i),
			Timestamp: ts,
			Intensity: math.Round(intensity*1000) / 1000,
			Type:      typ,
			Primary:   pal[s.Intn(len(pal))],
		}
		for k := s.Intn(MaxSecondary + 1); k > 0; k-- {
			e.Secondary = append(e.Secondary, pal[s.Intn(len(pal))])
		}
		for k := s.Intn(MaxAccents + 1); k > 0; k-- {
			e.Accents = append(e.Accents, palettes[components.Bloom][s.Intn(len(palettes[components.Bloom]))])
		}
		out[i] = e
	}
	return out
}
