package consensus

import (
	"strings"

	"github.com/inodb/igcall/internal/pileup"
)

// Thresholds decide which pileup calls are trusted.
type Thresholds struct {
	MinDepth    int     // position depth must exceed this
	MinAltDepth int     // call count must exceed this
	VAF         float64 // tumor allele fraction, purity adjusted
	VAFNormal   float64
	Purity      float64
}

func (t Thresholds) passNormal(c pileup.Call, depth int) bool {
	return depth > t.MinDepth && c.Count > t.MinAltDepth && float64(c.Count)/float64(depth) > t.VAFNormal
}

func (t Thresholds) passTumor(c pileup.Call, depth int) bool {
	return depth > t.MinDepth && c.Count > t.MinAltDepth && float64(c.Count)/float64(depth)/t.Purity > t.VAF
}

const unknown = "N"

// normalCalls returns the trusted normal calls per position in [start, end].
// Positions without coverage map to N, positions inside a normal deletion
// are absent. A position holding a deletion keeps only deletion calls.
func normalCalls(lines []pileup.Line, start, end int, th Thresholds) map[int][]string {
	calls := make(map[int][]string, end-start+1)
	pos, skipUntil := start, 0
	for _, l := range lines {
		if l.Pos < start || l.Pos > end || l.Pos <= skipUntil {
			continue
		}
		for ; pos < l.Pos; pos++ {
			if pos > skipUntil {
				calls[pos] = []string{unknown}
			}
		}

		var tp []string
		for _, c := range pileup.Tally(l.Calls, l.Ref) {
			if th.passNormal(c, l.Depth) {
				tp = append(tp, c.Token)
			}
		}
		if len(tp) == 0 {
			tp = []string{string(l.Ref)}
		}
		if dels := filterTokens(tp, isDeletion); len(dels) > 0 {
			tp = dels
			skipUntil = l.Pos + pileup.DeletedLength(dels[0])
		}
		calls[l.Pos] = tp
		pos = l.Pos + 1
	}
	for ; pos <= end; pos++ {
		if pos > skipUntil {
			calls[pos] = []string{unknown}
		}
	}
	return calls
}

// unknownCalls stands in for a missing normal sample.
func unknownCalls(start, end int) map[int][]string {
	calls := make(map[int][]string, end-start+1)
	for p := start; p <= end; p++ {
		calls[p] = []string{unknown}
	}
	return calls
}

// sideSequences walks the tumor pileup over [start, end] and returns the
// tumor and normal token sequences. An indel trusted in the normal is
// carried into both. Otherwise the best tumor call absent from the normal
// wins, then a call shared with the normal, then N.
func sideSequences(lines []pileup.Line, start, end int, normal map[int][]string, th Thresholds) (string, string) {
	var tumor, norm []string
	pos, skipUntil := start, 0

	normalAt := func(p int) []string {
		if c, ok := normal[p]; ok && len(c) > 0 {
			return c
		}
		return []string{unknown}
	}
	// carryNormalIndel emits a normal indel at p, reporting whether there was one.
	carryNormalIndel := func(p int, calls []string) bool {
		if dels := filterTokens(calls, isDeletion); len(dels) > 0 {
			tumor = append(tumor, dels[0])
			norm = append(norm, dels[0])
			skipUntil = p + pileup.DeletedLength(dels[0])
			return true
		}
		if ins := filterTokens(calls, isInsertion); len(ins) > 0 {
			tumor = append(tumor, ins[0])
			norm = append(norm, ins[0])
			return true
		}
		return false
	}

	for _, l := range lines {
		if l.Pos < start || l.Pos > end {
			continue
		}
		for ; pos < l.Pos; pos++ {
			if pos <= skipUntil {
				continue
			}
			nc := normalAt(pos)
			if !carryNormalIndel(pos, nc) {
				tumor = append(tumor, unknown)
				norm = append(norm, nc[0])
			}
		}
		pos = l.Pos + 1
		if l.Pos <= skipUntil {
			continue
		}

		nc := normalAt(l.Pos)
		if len(nc) == 1 && nc[0] == unknown {
			nc = []string{string(l.Ref)}
		}

		var shared, other []string
		for _, c := range pileup.Tally(l.Calls, l.Ref) {
			if !th.passTumor(c, l.Depth) {
				continue
			}
			if contains(nc, c.Token) {
				shared = append(shared, c.Token)
			} else {
				other = append(other, c.Token)
			}
		}

		switch {
		case carryNormalIndel(l.Pos, nc):
		case len(other) > 0:
			tumor = append(tumor, other[0])
			if isIndel(other[0]) {
				norm = append(norm, other[0])
				if isDeletion(other[0]) {
					skipUntil = l.Pos + pileup.DeletedLength(other[0])
				}
			} else {
				norm = append(norm, nc[0])
			}
		case len(shared) > 0:
			tumor = append(tumor, shared[0])
			norm = append(norm, shared[0])
		default:
			tumor = append(tumor, unknown)
			norm = append(norm, nc[0])
		}
	}

	for ; pos <= end; pos++ {
		if pos > skipUntil {
			tumor = append(tumor, unknown)
		}
	}
	for len(norm) < len(tumor) {
		norm = append(norm, unknown)
	}
	return strings.Join(tumor, ""), strings.Join(norm, "")
}

func isDeletion(tok string) bool  { return strings.HasSuffix(tok, ")") }
func isInsertion(tok string) bool { return strings.HasSuffix(tok, "]") }
func isIndel(tok string) bool     { return isDeletion(tok) || isInsertion(tok) }

func filterTokens(tokens []string, keep func(string) bool) []string {
	var out []string
	for _, t := range tokens {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
