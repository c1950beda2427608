package productivity

import (
	"fmt"
	"math"
)

// Homology compares tumor and normal framework sequences.
type Homology struct {
	Equal int // positions where both agree
	Total int // positions where neither is N
	// Valid is false when too few positions were comparable.
	Valid bool
}

// CompareHomology counts agreeing bases over positions where neither
// sequence has an N. It is valid only when more than half of tumor was
// comparable.
func CompareHomology(tumor, normal string) Homology {
	var h Homology
	for i := 0; i < len(tumor); i++ {
		if i >= len(normal) {
			break
		}
		if tumor[i] == 'N' || normal[i] == 'N' {
			continue
		}
		h.Total++
		if tumor[i] == normal[i] {
			h.Equal++
		}
	}
	h.Valid = h.Total*2 > len(tumor)
	return h
}

// Pct returns the percentage of agreeing bases rounded to three decimals.
func (h Homology) Pct() float64 {
	if h.Total == 0 {
		return 0
	}
	return math.Round(float64(h.Equal)/float64(h.Total)*100*1000) / 1000
}

// Fraction returns "equal/total".
func (h Homology) Fraction() string {
	return fmt.Sprintf("%d/%d", h.Equal, h.Total)
}
