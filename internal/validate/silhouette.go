package validate

import (
	"github.com/viterin/vek"
)

// Silhouette returns the mean silhouette coefficient of rows under labels.
// A row alone in its cluster scores 0. With fewer than two distinct labels
// the score is 0.
func Silhouette(rows [][]float64, labels []int) float64 {
	n := len(rows)
	clusters := make(map[int]int)
	for _, l := range labels {
		clusters[l]++
	}
	if n == 0 || len(clusters) < 2 {
		return 0
	}

	total := 0.0
	sums := make(map[int]float64, len(clusters))
	for i := range rows {
		clear(sums)
		for j := range rows {
			if i != j {
				sums[labels[j]] += distance(rows[i], rows[j])
			}
		}

		own := labels[i]
		if clusters[own] == 1 {
			continue
		}
		a := sums[own] / float64(clusters[own]-1)

		b := -1.0
		for l, size := range clusters {
			if l == own {
				continue
			}
			if mean := sums[l] / float64(size); b < 0 || mean < b {
				b = mean
			}
		}

		if d := max(a, b); d > 0 {
			total += (b - a) / d
		}
	}
	return total / float64(n)
}

func distance(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return vek.Distance(a, b)
}
