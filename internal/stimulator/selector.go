package stimulator

import "math/rand"

// PopulationSelector picks the neurons a stimulator targets.
type PopulationSelector interface {
	Select(ids []int) []int
}

// All selects every neuron in the sheet.
type All struct{}

func (All) Select(ids []int) []int { return ids }

// RandomN selects n neurons uniformly without replacement, deterministically
// for a given seed. If n exceeds the population size, all ids are returned.
type RandomN struct {
	N    int
	Seed int64
}

func (r RandomN) Select(ids []int) []int {
	if r.N >= len(ids) {
		out := make([]int, len(ids))
		copy(out, ids)
		return out
	}
	rng := rand.New(rand.NewSource(r.Seed))
	perm := rng.Perm(len(ids))
	out := make([]int, r.N)
	for i := 0; i < r.N; i++ {
		out[i] = ids[perm[i]]
	}
	return out
}
