// Package filter applies hard filters to rearrangement calls and collapses
// calls that describe the same rearrangement.
package filter

import (
	"fmt"
	"strings"

	"github.com/inodb/igcall/internal/breakpoint"
)

const (
	minScore       = 3
	minVLength     = 20
	maxNFraction   = 0.5
	minKdeRSSSplit = 2
	sep            = " - "
)

// Call is the view of a rearrangement call the filter needs.
type Call struct {
	Index        int // position in the caller's slice
	Label        string
	Orientation  breakpoint.Orientation
	Score        float64
	SplitReads   int
	Productivity string
	CDR3         string
	V, J         string // tumor sequences
}

// Options control the filter.
type Options struct {
	// SeqType is wgs, wes or capture. The V N-content check only applies to wgs.
	SeqType string
	// Distal treats genes of the distal IGK cluster (IGKVD) as duplicates of
	// their proximal copy.
	Distal bool
}

// Apply returns the calls that pass, in input order. Calls that lose to a
// later duplicate are removed; a duplicate replacing a call with the same
// label takes its position. Kde-RSS duplicates are kept under a numbered
// label.
func Apply(calls []*Call, opt Options) []*Call {
	f := &filter{opt: opt, kdeCount: 2}
	for _, c := range calls {
		if !f.pass(c) {
			continue
		}
		f.add(c)
	}
	return f.kept
}

type filter struct {
	opt      Options
	kept     []*Call
	kdeCount int
}

func (f *filter) pass(c *Call) bool {
	if c.Score < minScore {
		return false
	}
	if c.Score == minScore && !productive(c) {
		return false
	}
	kde, rss := strings.Contains(c.Label, "Kde"), strings.Contains(c.Label, "RSS")
	switch {
	case !kde && !rss:
		if f.opt.SeqType == "wgs" && nFraction(c.V) > maxNFraction {
			return false
		}
		if nFraction(c.J) > maxNFraction {
			return false
		}
		if len(c.V) < minVLength {
			return false
		}
	case kde && rss:
		if c.SplitReads < minKdeRSSSplit {
			return false
		}
	}
	return true
}

func (f *filter) add(c *Call) {
	if i := f.index(c.Label); i >= 0 {
		f.sameLabel(i, c)
		return
	}

	var beaten []int
	for i, stored := range f.kept {
		collide, wins := f.crossLabel(stored, c)
		if !collide {
			continue
		}
		if !wins {
			return
		}
		beaten = append(beaten, i)
	}
	if len(beaten) > 0 {
		kept := f.kept[:0:0]
		for i, stored := range f.kept {
			if len(beaten) > 0 && beaten[0] == i {
				beaten = beaten[1:]
				continue
			}
			kept = append(kept, stored)
		}
		f.kept = kept
	}
	f.kept = append(f.kept, c)
}

func (f *filter) index(label string) int {
	for i, c := range f.kept {
		if c.Label == label {
			return i
		}
	}
	return -1
}

func (f *filter) sameLabel(i int, c *Call) {
	stored := f.kept[i]
	kde, rss := strings.Contains(c.Label, "Kde"), strings.Contains(c.Label, "RSS")
	switch {
	case kde && rss:
		dup := *c
		dup.Label = fmt.Sprintf("%s (%d)", c.Label, f.kdeCount)
		f.kdeCount++
		f.kept = append(f.kept, &dup)
	case kde || rss:
		if c.Score > stored.Score ||
			c.Score == stored.Score && c.Orientation == breakpoint.Deletion && stored.Orientation != breakpoint.Deletion {
			f.kept[i] = c
		}
	default:
		if wins, decided := functionality(stored, c); decided {
			if wins {
				f.kept[i] = c
			}
			return
		}
		if productive(c) && len(c.CDR3) > len(stored.CDR3) {
			f.kept[i] = c
		}
	}
}

// crossLabel reports whether c collides with a differently labelled stored
// call and, if so, whether c wins.
func (f *filter) crossLabel(stored, c *Call) (collide, wins bool) {
	ts, nw := strings.Split(stored.Label, sep), strings.Split(c.Label, sep)
	switch common := shared(ts, nw); {
	case common > 1:
		if len(ts) != len(nw) {
			return true, len(nw) > len(ts)
		}
		if wins, decided := functionality(stored, c); decided {
			return true, wins
		}
		return true, productive(c) && len(c.CDR3) >= len(stored.CDR3)
	case common == 1 && f.opt.Distal:
		proximal := strings.ReplaceAll(c.Label, "D", "")
		if strings.ReplaceAll(stored.Label, "D", "") != c.Label && stored.Label != proximal {
			return false, false
		}
		if c.Score != stored.Score {
			return true, c.Score > stored.Score
		}
		return true, strings.ReplaceAll(stored.Label, "D", "") == c.Label
	}
	return false, false
}

// functionality ranks productive over unproductive, then Phe118 not
// identified over the rest, then higher score. Equal-score unproductive
// calls keep the stored one. decided is false when both are productive with
// equal scores.
func functionality(stored, c *Call) (wins, decided bool) {
	sp, np := productive(stored), productive(c)
	switch {
	case np && !sp:
		return true, true
	case sp && !np:
		return false, true
	}
	sf, nf := phe118Missing(stored), phe118Missing(c)
	switch {
	case nf && !sf:
		return true, true
	case sf && !nf:
		return false, true
	}
	switch {
	case c.Score > stored.Score:
		return true, true
	case c.Score < stored.Score:
		return false, true
	case !np:
		return false, true
	}
	return false, false
}

func productive(c *Call) bool { return strings.Contains(c.Productivity, "Productive") }

func phe118Missing(c *Call) bool {
	return strings.HasPrefix(c.Productivity, "Phe118 not identified")
}

func shared(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, g := range a {
		set[g] = true
	}
	n := 0
	seen := make(map[string]bool, len(b))
	for _, g := range b {
		if set[g] && !seen[g] {
			n++
		}
		seen[g] = true
	}
	return n
}

func nFraction(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	return float64(strings.Count(seq, "N")) / float64(len(seq))
}
