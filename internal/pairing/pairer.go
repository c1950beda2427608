package pairing

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/locus"
)

const (
	// MinLowSpan and MinHighSpan drop candidates whose breakpoint hugs the gene boundary.
	MinLowSpan  = 5
	MinHighSpan = 10
)

// Key identifies a gene pair (genomic order) with an orientation.
type Key struct {
	Label       string
	Orientation breakpoint.Orientation
}

type splitKey struct {
	breaks      [2]int
	orientation breakpoint.Orientation
}

// Counts holds support counts: split reads by exact breakpoint pair,
// insert-size reads by gene pair.
type Counts struct {
	split      map[splitKey]int
	insert     map[Key]int
	insertKeys []Key
}

// NewCounts returns empty counts.
func NewCounts() *Counts {
	return &Counts{split: make(map[splitKey]int), insert: make(map[Key]int)}
}

// Split returns the number of paired-split reads at (low, high).
func (c *Counts) Split(low, high int, o breakpoint.Orientation) int {
	return c.split[splitKey{[2]int{low, high}, o}]
}

// Insert returns the number of insert-size pairs for k.
func (c *Counts) Insert(k Key) int {
	return c.insert[k]
}

// AddInsert records one insert-size pair for k.
func (c *Counts) AddInsert(k Key) {
	if c.insert[k] == 0 {
		c.insertKeys = append(c.insertKeys, k)
	}
	c.insert[k]++
}

// InsertKeys returns the gene pairs with insert-size support in first-seen order.
func (c *Counts) InsertKeys() []Key {
	return c.insertKeys
}

// Result is the output of pairing.
type Result struct {
	Keys       []Key
	Counts     *Counts
	Candidates []*Candidate
}

// Pairer assembles candidates for one locus.
type Pairer struct {
	locus  *locus.Locus
	genes  *cache.Annotation
	logger *zap.Logger
}

// NewPairer creates a pairer.
func NewPairer(l *locus.Locus, genes *cache.Annotation) *Pairer {
	return &Pairer{locus: l, genes: genes, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (p *Pairer) SetLogger(l *zap.Logger) {
	p.logger = l
}

// halves are the first slot of the split pair and of the insert-size pair.
var halves = [2]int{breakpoint.SplitLow, breakpoint.InsertLow}

// Keys returns the distinct gene-pair keys in first-seen order. A half
// contributes when both of its genes are assigned and of different classes.
func (p *Pairer) Keys(records []*breakpoint.Classified) []Key {
	var keys []Key
	seen := make(map[Key]bool)
	for _, r := range records {
		for _, h := range halves {
			a, b := r.Genes[h], r.Genes[h+1]
			if a == "" || b == "" || cache.GeneClass(a) == cache.GeneClass(b) {
				continue
			}
			if rc := p.locus.RequiredClass; rc != 0 && cache.GeneClass(a) != rc && cache.GeneClass(b) != rc {
				continue
			}
			k := Key{a + Sep + b, r.Orientation}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

type breakObs struct {
	breaks      [2]int
	orientation breakpoint.Orientation
}

// Pair counts support for every key and builds the candidates.
func (p *Pairer) Pair(records []*breakpoint.Classified) *Result {
	keys := p.Keys(records)
	counts := NewCounts()

	var labels []string
	splits := make(map[string][]breakObs)
	seenLabel := make(map[string]bool)

	for _, k := range keys {
		for _, r := range records {
			if r.Orientation != k.Orientation {
				continue
			}
			pos := r.Positions()
			for _, h := range halves {
				if pos[h] == 0 || pos[h+1] == 0 || r.Genes[h]+Sep+r.Genes[h+1] != k.Label {
					continue
				}
				if !seenLabel[k.Label] {
					seenLabel[k.Label] = true
					labels = append(labels, k.Label)
				}
				if h == breakpoint.SplitLow {
					obs := breakObs{[2]int{pos[h], pos[h+1]}, k.Orientation}
					counts.split[splitKey(obs)]++
					splits[k.Label] = appendUnique(splits[k.Label], obs)
				} else {
					counts.AddInsert(k)
				}
			}
		}
	}

	var candidates []*Candidate
	for _, label := range labels {
		obs := splits[label]
		if len(obs) == 0 {
			obs = p.synthesize(label, records, false)
		}
		if len(obs) == 0 {
			obs = p.synthesize(label, records, true)
		}
		for _, o := range obs {
			if c := p.candidate(label, o, counts); c != nil {
				candidates = append(candidates, c)
			}
		}
	}

	p.logger.Info("paired breakpoints",
		zap.String("locus", string(p.locus.Name)),
		zap.Int("keys", len(keys)),
		zap.Int("candidates", len(candidates)))

	return &Result{Keys: keys, Counts: counts, Candidates: candidates}
}

type posObs struct {
	pos         int
	orientation breakpoint.Orientation
}

// synthesize combines single-sided breakpoints when no read spans both
// genes. The orientation is the most common one among insert-size pairs of
// the label. The narrow pass uses split reads only; the wide pass also takes
// insert-size boundaries.
func (p *Pairer) synthesize(label string, records []*breakpoint.Classified, wide bool) []breakObs {
	low, high, _ := strings.Cut(label, Sep)

	var lows, highs []posObs
	var classes []breakpoint.Orientation
	for _, r := range records {
		if wide || r.Evidence.HasSplit() {
			switch r.Genes[breakpoint.SplitLow] {
			case low:
				lows = append(lows, posObs{r.Split[0], r.Orientation})
			case high:
				highs = append(highs, posObs{r.Split[0], r.Orientation})
			}
		}
		if wide {
			switch r.Genes[breakpoint.InsertLow] {
			case low:
				lows = append(lows, posObs{r.Insert[0], r.Orientation})
			case high:
				highs = append(highs, posObs{r.Insert[0], r.Orientation})
			}
			if r.Genes[breakpoint.InsertHigh] == high {
				highs = append(highs, posObs{r.Insert[1], r.Orientation})
			}
		}
		if r.Genes[breakpoint.InsertLow] == low && r.Genes[breakpoint.InsertHigh] == high {
			classes = append(classes, r.Orientation)
		}
	}

	class, ok := mostCommon(classes)
	if !ok {
		return nil
	}
	lowPos := compatible(lows, class)
	highPos := compatible(highs, class)

	var out []breakObs
	for _, a := range lowPos {
		for _, b := range highPos {
			out = append(out, breakObs{[2]int{a, b}, class})
		}
	}
	return out
}

// candidate builds the gene windows for one breakpoint pair, or nil when
// either window is too narrow.
func (p *Pairer) candidate(label string, o breakObs, counts *Counts) *Candidate {
	lowName, highName, _ := strings.Cut(label, Sep)
	lowGene, ok1 := p.genes.Gene(lowName)
	highGene, ok2 := p.genes.Gene(highName)
	if !ok1 || !ok2 {
		return nil
	}

	lb, ok1 := lowBoundary[o.orientation]
	hb, ok2 := highBoundary[o.orientation]
	if !ok1 || !ok2 {
		return nil
	}

	c := &Candidate{
		Orientation: o.orientation,
		Breaks:      o.breaks,
		SplitReads:  counts.Split(o.breaks[0], o.breaks[1], o.orientation),
		InsertReads: counts.Insert(Key{label, o.orientation}),
		VIsLow:      p.locus.VIsLow,
	}
	c.Low = window(lowName, lb(lowGene), o.breaks[0])
	if c.Low.Span() < MinLowSpan {
		return nil
	}
	c.High = window(highName, hb(highGene), o.breaks[1])
	if c.High.Span() < MinHighSpan {
		return nil
	}
	return c
}

func geneStart(g *cache.Gene) int { return g.Start }
func geneEnd(g *cache.Gene) int   { return g.End }

// Gene boundary paired with the breakpoint, by orientation.
var (
	lowBoundary = map[breakpoint.Orientation]func(*cache.Gene) int{
		breakpoint.Deletion:   geneStart,
		breakpoint.Inversion1: geneEnd,
		breakpoint.Inversion2: geneStart,
	}
	highBoundary = map[breakpoint.Orientation]func(*cache.Gene) int{
		breakpoint.Deletion:   geneEnd,
		breakpoint.Inversion1: geneEnd,
		breakpoint.Inversion2: geneStart,
	}
)

func window(gene string, boundary, brk int) Side {
	return Side{Gene: gene, Start: min(boundary, brk), End: max(boundary, brk)}
}

func appendUnique(list []breakObs, o breakObs) []breakObs {
	for _, x := range list {
		if x == o {
			return list
		}
	}
	return append(list, o)
}

// compatible returns the distinct positions whose orientation is unresolved
// or matches class, in first-seen order.
func compatible(obs []posObs, class breakpoint.Orientation) []int {
	var out []int
	seen := make(map[int]bool)
	for _, o := range obs {
		if o.orientation != breakpoint.NotComplete && o.orientation != class {
			continue
		}
		if !seen[o.pos] {
			seen[o.pos] = true
			out = append(out, o.pos)
		}
	}
	return out
}

// mostCommon returns the most frequent orientation; ties go to the first seen.
func mostCommon(list []breakpoint.Orientation) (breakpoint.Orientation, bool) {
	if len(list) == 0 {
		return "", false
	}
	counts := make(map[breakpoint.Orientation]int)
	var order []breakpoint.Orientation
	for _, o := range list {
		if counts[o] == 0 {
			order = append(order, o)
		}
		counts[o]++
	}
	best := order[0]
	for _, o := range order[1:] {
		if counts[o] > counts[best] {
			best = o
		}
	}
	return best, true
}
