package recommend

import (
	"math/rand/v2"
	"sync"
)

// Selector picks an index in [0, n)
type Selector interface {
	Intn(n int) int
}

type randomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector returns a uniform selector seeded with seed. It is safe for concurrent use.
func NewRandomSelector(seed uint64) Selector {
	return &randomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *randomSelector) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func pick(sel Selector, items []string) string {
	if len(items) == 0 {
		return ""
	}
	i := sel.Intn(len(items))
	if i < 0 || i >= len(items) {
		i = 0
	}
	return items[i]
}
