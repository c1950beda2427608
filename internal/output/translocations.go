package output

import (
	"io"
	"strconv"

	"github.com/inodb/igcall/internal/transloc"
)

// TranslocationWriter writes translocation calls.
type TranslocationWriter struct {
	*TabWriter
}

// NewTranslocationWriter creates a translocation table writer.
func NewTranslocationWriter(w io.Writer) *TranslocationWriter {
	return &TranslocationWriter{NewTabWriter(w,
		"Rearrangement", "Mechanism", "Score", "ReadsInNormal",
		"ChrA", "PositionA", "StrandA", "ChrB", "PositionB", "StrandB",
	)}
}

// Write writes a single call.
func (tw *TranslocationWriter) Write(c *transloc.Call) error {
	return tw.WriteRow(
		c.Annotation,
		c.Mechanism,
		float(c.Score),
		c.Normal,
		c.A.Chrom, strconv.Itoa(c.A.Pos), string(c.A.Strand),
		c.B.Chrom, strconv.Itoa(c.B.Pos), string(c.B.Strand),
	)
}

// TranslocationPassWriter writes passing translocations with their
// breakpoints folded into the annotation.
type TranslocationPassWriter struct {
	*TabWriter
}

// NewTranslocationPassWriter creates a PASS translocation table writer.
func NewTranslocationPassWriter(w io.Writer) *TranslocationPassWriter {
	return &TranslocationPassWriter{NewTabWriter(w, "Rearrangement", "Mechanism", "Score")}
}

// Write writes c if it passes.
func (tw *TranslocationPassWriter) Write(c *transloc.Call) error {
	if !c.Pass {
		return nil
	}
	return tw.WriteRow(
		c.PassAnnotation(),
		c.Mechanism,
		float(c.Score)+" ("+c.Normal+")",
	)
}
