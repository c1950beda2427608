package csr

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Wilcoxon runs a two-sided Wilcoxon signed-rank test on paired samples x
// and y using the normal approximation with tie correction. Zero
// differences are discarded. It returns the smaller of the signed rank sums
// and the p-value; p is 1 when no non-zero difference remains.
func Wilcoxon(x, y []float64) (statistic, p float64) {
	n := min(len(x), len(y))
	d := make([]float64, 0, n)
	for i := range n {
		if diff := x[i] - y[i]; diff != 0 {
			d = append(d, diff)
		}
	}
	if len(d) == 0 {
		return 0, 1
	}

	abs := make([]float64, len(d))
	for i, v := range d {
		abs[i] = math.Abs(v)
	}
	ranks, ties := rank(abs)

	var plus, minus float64
	for i, v := range d {
		if v > 0 {
			plus += ranks[i]
		} else {
			minus += ranks[i]
		}
	}
	statistic = math.Min(plus, minus)

	m := float64(len(d))
	mean := m * (m + 1) / 4
	variance := m*(m+1)*(2*m+1)/24 - ties/48
	if variance <= 0 {
		return statistic, 1
	}
	z := (statistic - mean) / math.Sqrt(variance)
	p = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return statistic, math.Min(p, 1)
}

// rank assigns 1-based average ranks to x and returns the tie term
// sum(t^3 - t) over groups of tied values.
func rank(x []float64) (ranks []float64, ties float64) {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	idx := make([]int, len(x))
	floats.Argsort(sorted, idx)

	ranks = make([]float64, len(x))
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[i] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i + 1); t > 1 {
			ties += t*t*t - t
		}
		i = j + 1
	}
	return ranks, ties
}
