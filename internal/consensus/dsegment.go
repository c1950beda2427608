package consensus

import (
	"strings"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/pairing"
)

// minOverlap is the shortest clipped tail that must match the opposite side.
const minOverlap = 5

// dFragments collects the read bases lying between the two gene segments.
// Paired split reads contribute the bases between their aligned parts;
// split reads at one break contribute the clipped bases preceding the
// opposite side's sequence, and count as single-side support.
func dFragments(c *pairing.Candidate, records []*breakpoint.Classified, lowSeq, highSeq string) []string {
	breakLow, breakHigh := c.Low.End, c.High.Start

	highPlain := removeBrackets(trimLeadingInsertion(RemoveDeletions(highSeq)))
	lowPlain := removeBrackets(trimTrailingInsertion(RemoveDeletions(lowSeq)))

	var frags []string
	for _, r := range records {
		if !r.Evidence.HasSplit() || !align.HasSoftClip(r.Cigar) {
			continue
		}
		switch {
		case r.Split[0] == breakLow && r.Split[1] == breakHigh:
			if r.SA == nil {
				continue
			}
			var from, to int
			if align.MatchBeforeClip(r.Cigar) {
				from, to = align.MatchedAndInserted(r.Cigar), align.SoftClipped(r.SA.Cigar)
			} else {
				from, to = align.MatchedAndInserted(r.SA.Cigar), align.SoftClipped(r.Cigar)
			}
			frags = append(frags, slice(r.Seq, from, to))

		case r.Split[0] == breakLow && r.Split[1] == 0:
			clip := clipped(r)
			for j := 0; j <= len(clip)-minOverlap; j++ {
				if strings.HasPrefix(highPlain, clip[j:]) {
					frags = append(frags, clip[:j])
					c.Low.SingleSplits++
					break
				}
			}

		case r.Split[0] == breakHigh && r.Split[1] == 0:
			clip := clipped(r)
			for v := len(clip); v >= minOverlap; v-- {
				if strings.HasSuffix(lowPlain, clip[:v]) {
					frags = append(frags, clip[v:])
					c.High.SingleSplits++
					break
				}
			}
		}
	}
	return frags
}

// clipped returns the soft-clipped bases of a split read.
func clipped(r *breakpoint.Classified) string {
	n := align.SoftClipped(r.Cigar)
	if align.MatchBeforeClip(r.Cigar) {
		return slice(r.Seq, len(r.Seq)-n, len(r.Seq))
	}
	return slice(r.Seq, 0, n)
}

// slice is s[from:to] clamped to s, empty when the range is inverted.
func slice(s string, from, to int) string {
	from = max(0, min(from, len(s)))
	to = max(0, min(to, len(s)))
	if from >= to {
		return ""
	}
	return s[from:to]
}

// groupFragments decides which D segments to report. Each returned group
// yields one call; all but the last become clones.
//   - every fragment has a distinct length: one group per fragment
//   - the two most common lengths tie: one group for each
//   - otherwise: the fragments of the most common length
func groupFragments(frags []string) [][]string {
	if len(frags) == 0 {
		return nil
	}

	var lengths []int
	counts := make(map[int]int)
	for _, f := range frags {
		if counts[len(f)] == 0 {
			lengths = append(lengths, len(f))
		}
		counts[len(f)]++
	}

	if len(lengths) == len(frags) {
		groups := make([][]string, len(frags))
		for i, f := range frags {
			groups[i] = []string{f}
		}
		return groups
	}

	ranked := rankLengths(lengths, counts)
	if len(ranked) >= 2 && counts[ranked[0]] == counts[ranked[1]] {
		return [][]string{withLength(frags, ranked[0]), withLength(frags, ranked[1])}
	}
	return [][]string{withLength(frags, ranked[0])}
}

// rankLengths orders lengths by count, ties in first-seen order.
func rankLengths(lengths []int, counts map[int]int) []int {
	ranked := append([]int(nil), lengths...)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

func withLength(frags []string, n int) []string {
	var out []string
	for _, f := range frags {
		if len(f) == n {
			out = append(out, f)
		}
	}
	return out
}

// consensusD builds the per-position majority of equally long fragments
// (ties: first seen) and removes bases already reported as insertions at
// the facing ends of the low and high sequences.
func consensusD(frags []string, lowSeq, highSeq string) string {
	if len(frags) == 0 {
		return ""
	}
	n := len(frags[0])
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var order []byte
		counts := make(map[byte]int)
		for _, f := range frags {
			if i >= len(f) {
				continue
			}
			if counts[f[i]] == 0 {
				order = append(order, f[i])
			}
			counts[f[i]]++
		}
		best := order[0]
		for _, b := range order[1:] {
			if counts[b] > counts[best] {
				best = b
			}
		}
		out[i] = best
	}
	d := string(out)

	if ins := trailingInsertion(lowSeq); ins != "" && strings.HasPrefix(d, ins) {
		d = d[len(ins):]
	}
	if ins := leadingInsertion(highSeq); ins != "" && strings.HasSuffix(d, ins) {
		d = d[:len(d)-len(ins)]
	}
	return d
}
