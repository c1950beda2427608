package consensus

import "github.com/inodb/igcall/internal/cache"

// Local alignment scores for D-gene matching.
const (
	matchScore   = 5
	mismatchCost = 4
	gapCost      = 8
)

type scoreMatrix struct {
	cols  int
	array []int
}

func newScoreMatrix(rows, cols int) *scoreMatrix {
	return &scoreMatrix{cols: cols, array: make([]int, rows*cols)}
}

func (m *scoreMatrix) at(row, col int) int {
	return m.array[row*m.cols+col]
}

func (m *scoreMatrix) setAt(row, col, value int) {
	m.array[row*m.cols+col] = value
}

// SmithWaterman returns the best local alignment score of x against y
// with a linear gap cost.
func SmithWaterman(x, y string) int {
	m := newScoreMatrix(len(x)+1, len(y)+1)
	best := 0
	for i := 1; i <= len(x); i++ {
		for j := 1; j <= len(y); j++ {
			diag := m.at(i-1, j-1) - mismatchCost
			if x[i-1] == y[j-1] {
				diag = m.at(i-1, j-1) + matchScore
			}
			score := max(diag, m.at(i-1, j)-gapCost, m.at(i, j-1)-gapCost, 0)
			m.setAt(i, j, score)
			best = max(best, score)
		}
	}
	return best
}

// BestDGene returns the catalog gene aligning best to seq; ties keep
// catalog order. It returns "" for an empty catalog.
func BestDGene(seq string, catalog []cache.DGene) string {
	name, best := "", -1
	for _, g := range catalog {
		if s := SmithWaterman(seq, g.Seq); s > best {
			name, best = g.Name, s
		}
	}
	return name
}
