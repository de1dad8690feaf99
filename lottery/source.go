package lottery

import (
	"math/rand/v2"

	"x-lotto/util/common"
)

// Source supplies the randomness for draws and previews.
type Source interface {
	// Intn returns a value in [0, n). n > 0.
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	return common.RandomBetween(0, n-1)
}

// DefaultSource draws from crypto/rand.
func DefaultSource() Source {
	return cryptoSource{}
}

type seededSource struct {
	r *rand.Rand
}

// NewSeededSource returns a reproducible source, mostly for tests and replays.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	return s.r.IntN(n)
}
