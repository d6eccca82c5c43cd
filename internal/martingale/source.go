package martingale

import (
	"math/rand"
	"sync"
	"time"

	"martingale-demo/internal/models"
)

// Source supplies the coin flips behind every bet.
type Source interface {
	NextBool() bool
}

type randSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a pseudo-random Source. A zero seed seeds from the clock.
// The returned Source is safe for concurrent use.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *randSource) NextBool() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() >= 0.5
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() bool

func (f SourceFunc) NextBool() bool { return f() }

func drawColor(src Source) models.Color {
	if src.NextBool() {
		return models.ColorRed
	}
	return models.ColorBlack
}
