package output

import (
	"io"
	"strconv"

	"github.com/inodb/igcall/internal/csr"
)

// CSRWriter writes class-switch calls.
type CSRWriter struct {
	*TabWriter
}

// NewCSRWriter creates a class-switch table writer.
func NewCSRWriter(w io.Writer) *CSRWriter {
	return &CSRWriter{NewTabWriter(w,
		"Isotype", "Mechanism", "Score", "MeanCoverageUpstream",
		"MeanCoverageDownstream", "PValue", "CoverageReduction",
	)}
}

// Write writes a single call.
func (cw *CSRWriter) Write(c *csr.Call) error {
	return cw.WriteRow(
		c.Isotype,
		string(c.Orientation),
		float(c.Score),
		float(c.MeanA),
		float(c.MeanB),
		strconv.FormatFloat(c.PValue, 'g', 6, 64),
		float(c.Reduction),
	)
}
