// Package random provides the seeded pseudo-random stream used for genome
// variation and layout scatter, plus pure hash helpers for jitter that must
// not consume stream state.
package random

import (
	"hash/fnv"
	"math"
	"time"
)

// Stream is a deterministic generator (mulberry32). The same seed always
// yields the same sequence. A Stream is not safe for concurrent use; each
// consumer owns its own.
type Stream struct {
	state uint32
}

// New returns a stream seeded with seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Next returns the next value in [0,1).
func (s *Stream) Next() float64 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296.0
}

// Range returns a value in [lo,hi).
func (s *Stream) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Next()
}

// Signed returns a value in [-1,1).
func (s *Stream) Signed() float64 {
	return s.Next()*2 - 1
}

// Intn returns an int in [0,n). Returns 0 for n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Disc returns a point uniformly distributed in a disc of the given radius.
func (s *Stream) Disc(radius float64) (x, y float64) {
	r := radius * math.Sqrt(s.Next())
	theta := 2 * math.Pi * s.Next()
	return r * math.Cos(theta), r * math.Sin(theta)
}

// SeedFromTime folds a timestamp's Unix milliseconds into a 32-bit seed.
func SeedFromTime(t time.Time) uint32 {
	ms := uint64(t.UnixMilli())
	return Hash32(uint32(ms) ^ uint32(ms>>32))
}

// Hash32 is a stateless integer mix (lowbias32).
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Hash01 maps an index to a stable value in [0,1).
func Hash01(i int) float64 {
	return float64(Hash32(uint32(i)+0x9E3779B9)) / 4294967296.0
}

// HashString returns the FNV-1a hash of s.
func HashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
