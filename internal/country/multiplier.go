package country

import (
	"math/rand/v2"
	"sync"
)

const (
	minGDPMultiplier = 1000
	maxGDPMultiplier = 2000
)

// Multiplier supplies the coarse per-record factor used by EstimateGDP.
// Estimated GDP is intentionally not reproducible across runs unless the
// multiplier is pinned.
type Multiplier interface {
	Next() int64
}

// RandomMultiplier draws uniformly from [1000, 2000]. Safe for concurrent use.
type RandomMultiplier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomMultiplier seeds a PCG source. A zero seed picks a random one.
func NewRandomMultiplier(seed uint64) *RandomMultiplier {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomMultiplier{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (m *RandomMultiplier) Next() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return minGDPMultiplier + m.rnd.Int64N(maxGDPMultiplier-minGDPMultiplier+1)
}

// FixedMultiplier always returns the same factor.
type FixedMultiplier int64

func (f FixedMultiplier) Next() int64 { return int64(f) }
