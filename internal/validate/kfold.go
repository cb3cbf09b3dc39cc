// Package validate scores clustering and recommendation quality with
// shuffled k-fold cross-validation.
package validate

import (
	"math/rand/v2"
	"slices"

	"github.com/listenupapp/bookclusters/internal/errors"
)

// Split is one train/test partition of row positions.
type Split struct {
	Train []int // ascending
	Test  []int // in shuffled order
}

// KFold shuffles 0..n-1 with seed and cuts it into folds contiguous test
// sets. The first n%folds test sets hold one extra row. Every row is in
// exactly one test set.
func KFold(n, folds int, seed int64) ([]Split, error) {
	if folds < 2 {
		return nil, errors.Validationf("need at least 2 folds, got %d", folds)
	}
	if n < folds {
		return nil, errors.InsufficientDataf("cannot split %d rows into %d folds", n, folds)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(n)))
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	splits := make([]Split, folds)
	start := 0
	for f := range splits {
		size := n / folds
		if f < n%folds {
			size++
		}
		test := slices.Clone(order[start : start+size])
		start += size

		inTest := make(map[int]bool, len(test))
		for _, i := range test {
			inTest[i] = true
		}
		train := make([]int, 0, n-len(test))
		for i := 0; i < n; i++ {
			if !inTest[i] {
				train = append(train, i)
			}
		}
		splits[f] = Split{Train: train, Test: test}
	}
	return splits, nil
}
