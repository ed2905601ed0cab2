package dataset

import (
	"math/rand/v2"
	"sync"

	"reviewpulse/internal/domain"
)

// Picker chooses reviews uniformly at random.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewPicker(src rand.Source) *Picker {
	if src == nil {
		return &Picker{}
	}
	return &Picker{rng: rand.New(src)}
}

func (p *Picker) Pick(reviews []domain.Review) (domain.Review, bool) {
	if len(reviews) == 0 {
		return domain.Review{}, false
	}
	return reviews[p.intN(len(reviews))], true
}

func (p *Picker) intN(n int) int {
	if p.rng == nil {
		return rand.IntN(n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}
