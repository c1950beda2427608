package output

import (
	"io"

	"github.com/inodb/igcall/internal/caller"
)

var rearrangementColumns = []string{
	"Locus",
	"Rearrangement",
	"Orientation",
	"SplitReads",
	"InsertReads",
	"JStart",
	"JEnd",
	"JSingleSplits",
	"VStart",
	"VEnd",
	"VSingleSplits",
	"JSeq",
	"DSeq",
	"VSeq",
	"VSeqNormal",
	"VDJ",
	"DGene",
	"Homology",
	"HomologyBases",
	"Productivity",
	"CDR3",
	"Score",
	"MapQ",
}

// RearrangementWriter writes V(D)J rearrangement calls.
type RearrangementWriter struct {
	*TabWriter
}

// NewRearrangementWriter creates a rearrangement table writer.
func NewRearrangementWriter(w io.Writer) *RearrangementWriter {
	return &RearrangementWriter{NewTabWriter(w, rearrangementColumns...)}
}

// Write writes a single call.
func (rw *RearrangementWriter) Write(c *caller.Call) error {
	j, v := c.Candidate.J(), c.Candidate.V()

	homology, bases := NA, NA
	if c.Homology.Valid {
		homology, bases = float(c.Homology.Pct()), c.Homology.Fraction()
	}

	jn := c.Junction
	return rw.WriteRow(
		string(c.Locus),
		c.Label,
		string(c.Candidate.Orientation),
		itoa(c.Candidate.SplitReads),
		itoa(c.Candidate.InsertReads),
		itoa(j.Start),
		itoa(j.End),
		itoa(j.SingleSplits),
		itoa(v.Start),
		itoa(v.End),
		itoa(v.SingleSplits),
		jn.J,
		jn.D,
		jn.V,
		jn.VNormal,
		jn.VDJ,
		jn.DGene,
		homology,
		bases,
		c.Productivity,
		c.CDR3,
		float(c.Score),
		c.MapQ,
	)
}
