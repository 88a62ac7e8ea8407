// Package rng provides the seeded pseudo-random source used by NPC generation.
//
// An RNG is a Mulberry32 generator over a single uint32 state plus a tick
// counter for synthetic timestamps. The same seed always yields the same
// sequence of outputs for the same sequence of calls. An RNG is not safe for
// concurrent use; give each generation run its own instance.
package rng

import (
	"errors"
	"hash/fnv"
	"math"
	"time"
)

// FallbackSeed replaces a zero seed so the stream never starts from an
// all-zero state.
const FallbackSeed uint32 = 0xC0FFEE

// Epoch anchors synthetic timestamps (2023-11-14T22:13:20Z).
const Epoch int64 = 1700000000000

// TickStep is the synthetic clock advance per Timestamp call.
const TickStep = 137 * time.Millisecond

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrEmptyPool      = errors.New("cannot pick from an empty pool")
	ErrZeroWeight     = errors.New("weighted pick has zero total weight")
	ErrNegativeWeight = errors.New("weighted pick has a negative weight")
)

// RNG is a deterministic random source.
type RNG struct {
	state uint32
	ticks int64
}

// New creates an RNG from a numeric seed.
func New(seed uint32) *RNG {
	r := &RNG{}
	r.Reseed(seed)
	return r
}

// NewString creates an RNG from a string seed hashed with HashString.
func NewString(seed string) *RNG {
	return New(HashString(seed))
}

// HashString folds a string into a 32-bit seed using FNV-1a over its bytes.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Reseed resets the state and the tick counter as if freshly constructed.
func (r *RNG) Reseed(seed uint32) {
	if seed == 0 {
		seed = FallbackSeed
	}
	r.state = seed
	r.ticks = 0
}

// ReseedString resets the RNG from a string seed.
func (r *RNG) ReseedString(seed string) {
	r.Reseed(HashString(seed))
}

// State returns the current internal state, usable as a snapshot.
func (r *RNG) State() uint32 {
	return r.state
}

// Ticks returns how many synthetic timestamps have been issued since seeding.
func (r *RNG) Ticks() int64 {
	return r.ticks
}

// Uniform returns a float in [0,1). Every other draw is built on it.
func (r *RNG) Uniform() float64 {
	r.state += 0x6D2B79F5
	s := r.state
	t := (s ^ (s >> 15)) * (1 | s)
	t ^= t + (t^(t>>7))*(61|t)
	return float64(t^(t>>14)) / 4294967296
}

// IntRange returns an integer in [min,max] inclusive.
func (r *RNG) IntRange(min, max int) int {
	return int(math.Floor(r.Uniform()*float64(max-min+1))) + min
}

// FloatRange returns a float in [min,max).
func (r *RNG) FloatRange(min, max float64) float64 {
	return r.Uniform()*(max-min) + min
}

// Chance returns true with probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Uniform() < p
}

// Timestamp returns a strictly increasing synthetic ISO-8601 timestamp.
func (r *RNG) Timestamp() string {
	ts := time.UnixMilli(Epoch).Add(time.Duration(r.ticks) * TickStep)
	r.ticks++
	return ts.UTC().Format(timestampLayout)
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](r *RNG, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyPool
	}
	return items[int(math.Floor(r.Uniform()*float64(len(items))))], nil
}

// WeightedPick returns an element chosen with probability proportional to
// weight(item). Elements with zero weight are never returned. If floating
// point error leaves the draw unconsumed, the last positive-weight element
// is returned.
func WeightedPick[T any](r *RNG, items []T, weight func(T) float64) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyPool
	}

	weights := make([]float64, len(items))
	total := 0.0
	for i, item := range items {
		w := weight(item)
		if w < 0 {
			return zero, ErrNegativeWeight
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return zero, ErrZeroWeight
	}

	target := r.Uniform() * total
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w == 0 {
			continue
		}
		cumulative += w
		last = i
		if cumulative >= target {
			return items[i], nil
		}
	}
	return items[last], nil
}
