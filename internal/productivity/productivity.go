// Package productivity decides whether a reconstructed junction can encode
// a functional immunoglobulin chain and extracts its CDR3.
package productivity

import (
	"strings"

	"github.com/inodb/igcall/internal/consensus"
	"github.com/inodb/igcall/internal/locus"
)

// Productivity labels.
const (
	Productive          = "Productive (no stop codon and in-frame junction)"
	StopCodons          = "Unproductive (stop codons)"
	StopInFrame         = "Unproductive (stop codons, in-frame junction)"
	StopOutOfFrame      = "Unproductive (stop codons, out-of-frame junction)"
	OutOfFrame          = "Unproductive (out-of-frame junction)"
	StopNoPhe118        = "Unproductive (stop codons, Phe118 not identified)"
	Phe118NotIdentified = "Phe118 not identified (check at IMGT/IgBlast)"
	NoJunction          = "No junction found"
	NotAvailable        = "NA"
	IndelSuffix         = " [indel(s) in seq]"
)

const (
	productivePrefix   = "Productive"
	unproductivePrefix = "Unproductive"
	phe118Prefix       = "Phe118 not identified"
	cdr3NotAvailable   = "NA"

	// Cysteine and tryptophan codons.
	tgt, tgc, tgg = "TGT", "TGC", "TGG"
)

// IsProductive reports whether label marks a productive junction.
func IsProductive(label string) bool { return strings.HasPrefix(label, productivePrefix) }

// IsUnproductive reports whether label marks an unproductive junction.
func IsUnproductive(label string) bool { return strings.HasPrefix(label, unproductivePrefix) }

// IsPhe118Missing reports whether the J anchor could not be placed.
func IsPhe118Missing(label string) bool { return strings.HasPrefix(label, phe118Prefix) }

// Result is the productivity verdict of one junction.
type Result struct {
	Label    string
	CDR3     string // amino acids, "NA" when unavailable
	Homology Homology
}

type call struct {
	label    string
	cdr3     string
	homology Homology
	set      bool
}

// Analyzer evaluates junctions of one locus.
type Analyzer struct {
	locus *locus.Locus
}

// NewAnalyzer creates an analyzer for l.
func NewAnalyzer(l *locus.Locus) *Analyzer {
	return &Analyzer{locus: l}
}

// Analyze evaluates j. Junctions without sequence get "NA" throughout.
func (a *Analyzer) Analyze(j *consensus.Junction) Result {
	if j == nil || !j.Sequenced {
		return Result{Label: NotAvailable, CDR3: cdr3NotAvailable}
	}

	tumorV := consensus.WithDeletions(j.V)
	normalV := consensus.WithDeletions(j.VNormal)
	jSeq := consensus.Plain(j.J)
	t, n := tumorV+j.D, normalV+j.D
	if a.locus.CodingReverse {
		t = consensus.ReverseComplement(tumorV) + consensus.ReverseComplement(j.D)
		n = consensus.ReverseComplement(normalV) + consensus.ReverseComplement(j.D)
		jSeq = consensus.ReverseComplement(jSeq)
	}
	s := scan{
		anchors: a.locus.Anchors,
		t:       t,
		n:       n,
		j:       jSeq,
		// Heavy chains without a resolved D are not assessed.
		assess: !a.locus.MatchD || j.D != "",
	}

	best := s.fromCys23()
	if !IsProductive(best.label) {
		best = merge(best, s.fromTrp41())
	}

	res := Result{Label: NoJunction, CDR3: cdr3NotAvailable, Homology: best.homology}
	if best.set {
		res.Label, res.CDR3 = best.label, best.cdr3
	}
	if !res.Homology.Valid {
		res.Homology = CompareHomology(tumorV, normalV)
	}
	if consensus.HasIndel(j.V) {
		res.Label += IndelSuffix
	}
	return res
}

// merge picks between the Cys23- and Trp41-anchored calls.
func merge(cys, trp call) call {
	switch {
	case !trp.set:
		return cys
	case !cys.set:
		return trp
	case IsProductive(trp.label),
		IsUnproductive(cys.label) && IsPhe118Missing(trp.label),
		cys.label == StopOutOfFrame && trp.label == StopInFrame:
		return trp
	case IsUnproductive(cys.label) && IsUnproductive(trp.label) && len(trp.cdr3) < len(cys.cdr3):
		return trp
	}
	return cys
}

type scan struct {
	anchors locus.Anchors
	t, n, j string
	assess  bool
}

// fromCys23 anchors FR1 on a TGT/TGC codon, searching right to left.
func (s scan) fromCys23() call {
	var best call
	latest := NoJunction
	for _, po := range reversed(motifStarts(s.t, tgt, tgc)) {
		if IsProductive(latest) || IsPhe118Missing(latest) {
			break
		}
		if po-s.anchors.Cys23Margin < 0 {
			continue
		}
		next := po + s.anchors.Cys23ToTrp41
		if next > len(s.t) {
			continue
		}
		var positions []int
		if idx := codonIndexes(clamp(s.t, next, next+s.anchors.Trp41Window), tgg); len(idx) > 0 {
			next += idx[len(idx)-1] * 3
			cys104Start := next + s.anchors.Trp41ToCys104
			if cys104Start > len(s.t) {
				continue
			}
			positions = s.cys104(cys104Start)
		} else {
			positions = s.cys104(next + s.anchors.Trp41ToCys104)
		}
		for _, pos := range positions {
			c, ok := s.evaluate(po-s.anchors.Cys23Margin, pos)
			if !ok {
				continue
			}
			latest = c.label
			if !best.set || IsProductive(c.label) {
				best = c
			}
			if IsProductive(c.label) {
				break
			}
		}
	}
	return best
}

// fromTrp41 anchors FR1 on a TGG codon, searching right to left.
func (s scan) fromTrp41() call {
	var best call
	latest := NotAvailable
	for _, po := range reversed(motifStarts(s.t, tgg)) {
		if IsProductive(latest) || IsPhe118Missing(latest) {
			break
		}
		if po-s.anchors.Trp41Margin < 0 {
			continue
		}
		for _, pos := range s.cys104(po + s.anchors.Trp41ToCys104) {
			c, ok := s.evaluate(po-s.anchors.Trp41Margin, pos)
			if !ok {
				continue
			}
			latest = c.label
			if !best.set || IsProductive(c.label) {
				best = c
			}
			if IsProductive(c.label) || IsPhe118Missing(c.label) {
				break
			}
		}
	}
	return best
}

// cys104 returns the end positions of Cys104 candidates in the window at start.
func (s scan) cys104(start int) []int {
	var out []int
	for _, idx := range codonIndexes(clamp(s.t, start, start+s.anchors.Cys104Window), tgt, tgc) {
		out = append(out, start+idx*3+3)
	}
	return out
}

// evaluate assesses the V region starting at start with Cys104 ending at cys.
func (s scan) evaluate(start, cys int) (call, bool) {
	if !s.assess {
		return call{}, false
	}
	c := call{
		homology: CompareHomology(clamp(s.t, start, cys), clamp(s.n, start, cys)),
		set:      true,
	}
	vdj := s.t[start:] + s.j
	cdr3 := strings.TrimRight(clamp(vdj, cys-3-start, len(vdj)), "N")
	c.label, c.cdr3 = junction(vdj, cdr3)
	return c, true
}

// junction locates the J anchor (Phe118/Trp118 followed by Gly) in cdr3 and
// labels the rearrangement.
func junction(vdj, cdr3 string) (label, aa string) {
	base := Phe118NotIdentified
	if HasStopCodon(vdj) {
		base = StopCodons
	}

	starts := motifStarts(cdr3, "TTT", "TTC", "TGG")
	if len(starts) == 0 {
		if base == StopCodons {
			base = StopNoPhe118
		}
		return base, TranslateJunction(cdr3)
	}

	aa = cdr3NotAvailable
	for _, po := range reversed(starts) {
		label = base
		j118 := -1
		codons := Codons(clamp(cdr3, po, po+12))
		switch {
		case len(codons) == 4:
			if strings.Contains(codons[1], "N") {
				continue
			}
			if strings.Contains(codons[3], "N") {
				if TranslateCodon(codons[1]) == 'G' {
					j118 = po + 3
				}
			} else if TranslateCodon(codons[1]) == 'G' || TranslateCodon(codons[3]) == 'G' {
				j118 = po + 3
			}
		case len(codons) > 1 && !strings.Contains(codons[1], "N"):
			if TranslateCodon(codons[1]) == 'G' {
				j118 = po + 3
			}
		}

		if j118 < 0 {
			aa = TranslateJunction(cdr3)
			if label == StopCodons {
				label = StopNoPhe118
			}
			continue
		}

		seq := cdr3[:j118]
		if len(seq)%3 != 0 {
			label = OutOfFrame
			if base == StopCodons {
				label = StopOutOfFrame
			}
			marker := ".."
			if (len(seq)+1)%3 == 0 {
				marker = "."
			}
			k := max(len(seq)-9, 0)
			aa = TranslateJunction(seq[:k] + marker + seq[k:])
			continue
		}
		label = Productive
		if base == StopCodons {
			label = StopInFrame
		}
		aa = TranslateJunction(seq)
		if label == Productive {
			break
		}
	}
	return label, aa
}

func clamp(s string, from, to int) string {
	from = min(max(from, 0), len(s))
	to = min(max(to, from), len(s))
	return s[from:to]
}

func reversed(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}
