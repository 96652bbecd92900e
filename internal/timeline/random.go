package timeline

import "math/rand/v2"

// Random is the source of the cosmetic variation in synthesized timelines.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// NewSeededRandom returns a deterministic source.
func NewSeededRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
