package models

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

// IDGenerator produces task identifiers made of the base-36 millisecond
// timestamp followed by a base-36 random component.
//
// Identifiers are unique with very high probability but carry no
// cryptographic or global guarantee: two calls in the same millisecond
// collide only if the random components also match.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand *rand.Rand
}

// NewIDGenerator returns a generator using the given clock and random
// source. Nil arguments fall back to time.Now and a randomly seeded PCG.
func NewIDGenerator(now func() time.Time, r *rand.Rand) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &IDGenerator{now: now, rand: r}
}

// Next returns a new identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	// 53 bits: the precision of a random float64 fraction.
	r := g.rand.Uint64() >> 11
	g.mu.Unlock()

	return strconv.FormatInt(ms, 36) + strconv.FormatUint(r, 36)
}

var defaultIDs = NewIDGenerator(nil, nil)

// GenerateID returns a new task identifier from the process-wide generator.
func GenerateID() string {
	return defaultIDs.Next()
}
