package scheduler

import (
	"math/rand"
	"time"
)

// RandSource is the uniform nondeterministic choice primitive the
// dispatch loop uses to pick among enabled candidates (§4.3.3). It is
// seedable so test scenarios can fix the sequence (§8, scenario 6).
type RandSource interface {
	Intn(n int) int
}

type mathRand struct{ r *rand.Rand }

func (m mathRand) Intn(n int) int { return m.r.Intn(n) }

// NewSeededRand returns a RandSource with a fixed seed, for reproducible
// tests of nondeterministic choice.
func NewSeededRand(seed int64) RandSource {
	return mathRand{rand.New(rand.NewSource(seed))}
}

func defaultRand() RandSource {
	return mathRand{rand.New(rand.NewSource(time.Now().UnixNano()))}
}
