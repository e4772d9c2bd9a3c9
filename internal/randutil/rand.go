// Package randutil derives reproducible random sources for decks and rounds.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The two 64-bit PCG seeds are derived with splitmix so nearby seeds produce
// unrelated sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Resolve returns seed when it is non-zero, otherwise a seed taken from now.
// Callers log the resolved value so a session can be replayed with --seed.
func Resolve(seed int64, now time.Time) int64 {
	if seed != 0 {
		return seed
	}
	resolved := now.UnixNano()
	if resolved == 0 {
		resolved = 1
	}
	return resolved
}

// Stream hands out an independent seed per round from a single master seed.
// Round n of two streams built from the same master always gets the same seed.
type Stream struct {
	master int64
	next   uint64
}

// NewStream creates a seed stream for the given master seed
func NewStream(master int64) *Stream {
	return &Stream{master: master}
}

// Master returns the seed the stream was created with
func (s *Stream) Master() int64 {
	return s.master
}

// Next returns the seed for the next round
func (s *Stream) Next() int64 {
	s.next++
	return int64(mix(uint64(s.master) + s.next*goldenRatio64))
}

// At returns the seed for round n (1-based) without advancing the stream
func (s *Stream) At(n int) int64 {
	return int64(mix(uint64(s.master) + uint64(n)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
