// Package annotate assigns IG gene segments to breakpoint slots and labels
// each observation with its structural orientation.
package annotate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/locus"
)

// Annotator maps breakpoint positions to genes of one locus.
type Annotator struct {
	locus  *locus.Locus
	tree   *cache.IntervalTree
	logger *zap.Logger
}

// NewAnnotator creates an annotator over the locus gene annotation.
func NewAnnotator(l *locus.Locus, genes *cache.Annotation) *Annotator {
	a := &Annotator{locus: l, logger: zap.NewNop()}
	a.tree = genes.Index(a.window)
	return a
}

// SetLogger sets the logger for info messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// window widens J genes and other genes differently, per locus.
func (a *Annotator) window(g *cache.Gene) (int, int) {
	w := a.locus.OtherWindow
	if strings.HasPrefix(g.Name, string(a.locus.Name)+"J") {
		w = a.locus.JWindow
	}
	return w.Before, w.After
}

// Gene returns the first gene (in annotation order) whose window contains pos.
func (a *Annotator) Gene(pos int) string {
	if pos == 0 {
		return ""
	}
	g, ok := a.tree.FindFirst(pos)
	if !ok {
		return ""
	}
	return g.Name
}

// Annotate fills gene slots and orientation for every observation and
// returns, in table order, those with at least one gene and a known orientation.
func (a *Annotator) Annotate(t *breakpoint.Table) []*breakpoint.Classified {
	var kept []*breakpoint.Classified
	for _, c := range t.Records() {
		for i, pos := range c.Positions() {
			c.Genes[i] = a.Gene(pos)
		}
		c.Orientation = Orientation(c)

		if c.Orientation != breakpoint.NA && !uniform(c.Genes) {
			kept = append(kept, c)
		}
	}

	a.logger.Info("annotated breakpoints",
		zap.String("locus", string(a.locus.Name)),
		zap.Int("observations", t.Len()),
		zap.Int("kept", len(kept)))
	return kept
}

// Orientation classifies by insert-size flags when the observation has
// insert-size evidence, by split strands otherwise.
func Orientation(c *breakpoint.Classified) breakpoint.Orientation {
	if c.Evidence.HasInsert() {
		return breakpoint.InsertOrientation(c.Record)
	}
	return breakpoint.SplitOrientation(c.Record)
}

func uniform(genes [4]string) bool {
	for _, g := range genes[1:] {
		if g != genes[0] {
			return false
		}
	}
	return true
}
