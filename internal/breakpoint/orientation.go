package breakpoint

import "github.com/inodb/igcall/internal/align"

// Orientation is the structural class of a rearrangement.
type Orientation string

const (
	Deletion    Orientation = "Deletion"
	Inversion1  Orientation = "Inversion1" // <- <-
	Inversion2  Orientation = "Inversion2" // -> ->
	NotComplete Orientation = "NotComplete"
	NA          Orientation = "NA"
)

// sign buckets a template length.
func sign(tlen int) int {
	switch {
	case tlen > 0:
		return 1
	case tlen < 0:
		return -1
	}
	return 0
}

type splitKey struct {
	strand   byte
	saStrand byte
	tlenSign int
}

// splitOrientation is the decision table for split reads carrying an SA tag.
// Keys absent from the table are NA.
var splitOrientation = map[splitKey]Orientation{
	{'+', '+', 1}:  Deletion,
	{'-', '-', -1}: Deletion,

	{'+', '-', -1}: Inversion2,
	{'+', '-', 0}:  Inversion2,
	{'+', '-', 1}:  Inversion2,
	{'-', '+', -1}: Inversion2,
	{'-', '+', 0}:  Inversion2,
	{'-', '+', 1}:  Inversion2,
}

type insertRule struct {
	tlenSign int // 0 matches any template length
	class    Orientation
}

// insertOrientation is keyed by the exact SAM flag of an insert-size read.
var insertOrientation = map[uint16]insertRule{
	97:  {1, Deletion}, // -> <-
	161: {1, Deletion},
	145: {-1, Deletion},
	81:  {-1, Deletion},
	65:  {0, Inversion2}, // -> ->
	129: {0, Inversion2},
	113: {0, Inversion1}, // <- <-
	177: {0, Inversion1},
}

// SplitOrientation classifies a split read. Records without an SA tag are NotComplete.
func SplitOrientation(r *align.Record) Orientation {
	if r.SA == nil {
		return NotComplete
	}
	if o, ok := splitOrientation[splitKey{r.Strand(), r.SA.Strand, sign(r.TempLen)}]; ok {
		return o
	}
	return NA
}

// InsertOrientation classifies an insert-size read by its flag and template length.
func InsertOrientation(r *align.Record) Orientation {
	rule, ok := insertOrientation[r.Flag]
	if !ok {
		return NA
	}
	if rule.tlenSign != 0 && rule.tlenSign != sign(r.TempLen) {
		return NA
	}
	return rule.class
}

// overlapSign tells whether the bases shared by both split alignments are
// added to (convergent reads) or removed from the low breakpoint.
var overlapSign = map[Orientation]int{
	Deletion:    -1,
	Inversion1:  1,
	Inversion2:  -1,
	NotComplete: -1,
	NA:          -1,
}

type slotKey struct {
	read1    bool
	reverse  bool
	tlenSign int
}

// insertSlots maps (first-in-pair, reverse, sign of template length) to the
// breakpoint slot an insert-size boundary belongs to: 0 low, 1 high.
var insertSlots = map[slotKey]int{
	{true, false, 1}:   0, // 97 deletion, 65 inversion
	{false, true, -1}:  1, // 145 deletion, 177 inversion
	{true, true, -1}:   1, // 81 deletion
	{false, false, 1}:  0, // 161 deletion
	{false, false, -1}: 1, // 129 inversion
	{true, true, 1}:    0, // 113 inversion
}
