// Package pairing groups annotated breakpoints into gene-pair candidates
// and counts the reads supporting each one.
package pairing

import (
	"math"

	"github.com/inodb/igcall/internal/breakpoint"
)

// Labels join gene names with this separator.
const Sep = " - "

// Side is one gene of a candidate with its breakpoint window.
type Side struct {
	Gene         string
	Start, End   int // window between the gene boundary and the breakpoint
	SingleSplits int // split reads with only this side's breakpoint
}

// Span returns the window width.
func (s *Side) Span() int {
	return s.End - s.Start
}

// Candidate is a J-V gene pair at a specific breakpoint pair.
// Low and High are in genomic order.
type Candidate struct {
	Orientation breakpoint.Orientation
	Low, High   Side
	Breaks      [2]int // breakpoints the candidate was built from
	SplitReads  int    // paired-split reads at exactly these breakpoints
	InsertReads int    // insert-size pairs joining the two genes
	VIsLow      bool
}

// J returns the J side.
func (c *Candidate) J() *Side {
	if c.VIsLow {
		return &c.High
	}
	return &c.Low
}

// V returns the V side.
func (c *Candidate) V() *Side {
	if c.VIsLow {
		return &c.Low
	}
	return &c.High
}

// GenomicLabel joins the genes in genomic order.
func (c *Candidate) GenomicLabel() string {
	return c.Low.Gene + Sep + c.High.Gene
}

// Label joins the genes as "J - V".
func (c *Candidate) Label() string {
	return c.J().Gene + Sep + c.V().Gene
}

// RawScore weighs split evidence twice as much as insert-size evidence.
func (c *Candidate) RawScore() int {
	return 2*c.SplitReads + c.InsertReads + 2*c.Low.SingleSplits + 2*c.High.SingleSplits
}

// Score is the purity-adjusted support score rounded to one decimal.
func (c *Candidate) Score(purity float64) float64 {
	return Round(float64(c.RawScore())/purity, 1)
}

// Clone returns an independent copy.
func (c *Candidate) Clone() *Candidate {
	cp := *c
	return &cp
}

// Round rounds half away from zero to the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
