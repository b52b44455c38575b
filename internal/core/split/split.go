// Package split produces reproducible train/test index partitions
package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// TrainTestSplit shuffles [0,n) with a PCG source seeded by seed and cuts off
// ceil(testSize*n) indices for the test side. Both sides are non-empty when n >= 2.
// Returned slices are sorted so callers keep the original row order within each side
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("split: need at least 2 rows, got %d", n)
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, fmt.Errorf("split: test size must be in (0,1), got %g", testSize)
	}

	nTest := int(math.Ceil(testSize*float64(n) - 1e-9))
	nTest = min(max(nTest, 1), n-1)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	sort.Ints(test)
	sort.Ints(train)
	return train, test, nil
}

// Take returns xs[i] for every i in idx
func Take[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for j, i := range idx {
		out[j] = xs[i]
	}
	return out
}
