package caller

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/pairing"
)

// MapQSummary summarises the mapping quality of records supporting c: split
// records at the junction breakpoints, or insert-size pairs joining its genes.
// It returns "mean (min-max)" or NA.
func MapQSummary(records []*breakpoint.Classified, c *pairing.Candidate) string {
	var low, high int
	switch c.Orientation {
	case breakpoint.Deletion:
		low, high = c.Low.End, c.High.Start
	case breakpoint.Inversion2:
		low, high = c.Low.End, c.High.End
	case breakpoint.Inversion1:
		low, high = c.Low.Start, c.High.Start
	}

	var quals []int
	for _, r := range records {
		split := r.Evidence.HasSplit() && r.Split == [2]int{low, high}
		insert := r.Genes[breakpoint.InsertLow] == c.Low.Gene && r.Genes[breakpoint.InsertHigh] == c.High.Gene
		if split || insert {
			quals = append(quals, r.MapQ)
		}
	}
	if len(quals) == 0 {
		return "NA"
	}

	sum := 0
	for _, q := range quals {
		sum += q
	}
	mean := pairing.Round(float64(sum)/float64(len(quals)), 1)
	return fmt.Sprintf("%s (%d-%d)", FormatFloat(mean), slices.Min(quals), slices.Max(quals))
}

// FormatFloat prints x with the shortest representation, keeping one
// decimal for whole numbers ("60.0").
func FormatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
