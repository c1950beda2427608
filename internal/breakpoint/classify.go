// Package breakpoint classifies alignment records as split or insert-size
// evidence and extracts their breakpoint coordinates.
package breakpoint

import (
	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/locus"
)

const (
	// MinSoftClip is the soft-clipped length above which a read counts as split.
	MinSoftClip = 20
	// MinInsertSize is the template length above which a pair is discordant.
	MinInsertSize = 10000
)

// Evidence is the kind of breakpoint support a record provides.
type Evidence int

const (
	None Evidence = iota
	Split
	InsertSize
	SplitInsertSize
)

func (e Evidence) String() string {
	switch e {
	case Split:
		return "split"
	case InsertSize:
		return "insertSize"
	case SplitInsertSize:
		return "split-insertSize"
	}
	return "NA"
}

// HasSplit reports whether e includes split evidence.
func (e Evidence) HasSplit() bool {
	return e == Split || e == SplitInsertSize
}

// HasInsert reports whether e includes insert-size evidence.
func (e Evidence) HasInsert() bool {
	return e == InsertSize || e == SplitInsertSize
}

// Gene slot indices.
const (
	SplitLow = iota
	SplitHigh
	InsertLow
	InsertHigh
)

// Classified is an alignment record with its breakpoint evidence.
// Positions are 1-based; zero marks an unset slot.
type Classified struct {
	*align.Record
	Evidence    Evidence
	Split       [2]int
	Insert      [2]int
	Genes       [4]string // "" when unassigned
	Orientation Orientation
}

// Positions returns the four breakpoint slots in gene slot order.
func (c *Classified) Positions() [4]int {
	return [4]int{c.Split[0], c.Split[1], c.Insert[0], c.Insert[1]}
}

// Classifier turns alignment records into breakpoint evidence for one locus.
type Classifier struct {
	locus *locus.Locus
}

// NewClassifier creates a classifier for l.
func NewClassifier(l *locus.Locus) *Classifier {
	return &Classifier{locus: l}
}

// Classify returns the evidence carried by r, or nil when r is uninformative.
func (c *Classifier) Classify(r *align.Record) *Classified {
	if !r.Informative() {
		return nil
	}

	split := r.SA != nil || (c.locus.SoftClipSplits && align.SoftClipped(r.Cigar) > MinSoftClip)
	discordant := abs(r.TempLen) > MinInsertSize

	cr := &Classified{Record: r}
	switch {
	case split && discordant:
		cr.Evidence = SplitInsertSize
	case split:
		cr.Evidence = Split
	case discordant:
		cr.Evidence = InsertSize
	default:
		return nil
	}

	if cr.Evidence.HasSplit() {
		cr.Split = c.splitPositions(r)
	}
	if cr.Evidence.HasInsert() {
		slot, ok := insertSlots[slotKey{r.Bits()[align.BitRead1], r.Reverse(), sign(r.TempLen)}]
		switch {
		case ok:
			cr.Insert[slot] = insertBoundary(r)
		case cr.Evidence == InsertSize:
			return nil
		}
	}
	return cr
}

// splitPositions computes the (low, high) split breakpoints. The SA side is
// only resolved when the supplementary alignment lies on the locus chromosome.
func (c *Classifier) splitPositions(r *align.Record) [2]int {
	first := r.Pos + align.SplitOffset(r.Cigar)
	if r.SA == nil || r.SA.Chrom != c.locus.Chrom {
		return [2]int{first, 0}
	}

	second := r.SA.Pos + align.SplitOffset(r.SA.Cigar)
	low, high := min(first, second), max(first, second)

	overlap := align.RefLength(r.SA.Cigar) - align.SoftClipped(r.Cigar)
	if overlap > 0 {
		low += overlapSign[SplitOrientation(r)] * overlap
	}
	return [2]int{low, high}
}

// insertBoundary is the reference-consistent end of the read facing the breakpoint.
func insertBoundary(r *align.Record) int {
	if r.Reverse() {
		return r.Pos
	}
	return r.Pos + align.ConsumedLength(r.Cigar) - 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
