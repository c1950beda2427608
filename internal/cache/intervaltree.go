package cache

import "sort"

// IntervalTree provides O(log n + k) overlap queries using a sorted-slice approach.
// Gene windows are loaded once and never modified after build.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int // maxEnd[i] = max(End) for intervals[i:]
}

type interval struct {
	start int
	end   int
	gene  *Gene
}

// WindowFunc returns how far a gene interval is widened before and after.
type WindowFunc func(g *Gene) (before, after int)

// BuildIntervalTree creates an interval tree over gene intervals widened by window.
// A nil window keeps the intervals as they are.
func BuildIntervalTree(genes []*Gene, window WindowFunc) *IntervalTree {
	if len(genes) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(genes))
	for i, g := range genes {
		var before, after int
		if window != nil {
			before, after = window(g)
		}
		intervals[i] = interval{start: g.Start - before, end: g.End + after, gene: g}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build suffix-max array: maxEnd[i] = max(end) for intervals[i:]
	maxEnd := make([]int, len(intervals))
	maxEnd[len(intervals)-1] = intervals[len(intervals)-1].end
	for i := len(intervals) - 2; i >= 0; i-- {
		maxEnd[i] = intervals[i].end
		if maxEnd[i+1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i+1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns all genes whose widened [Start, End] range contains pos.
func (t *IntervalTree) FindOverlaps(pos int) []*Gene {
	if len(t.intervals) == 0 {
		return nil
	}

	var result []*Gene

	// Candidates are intervals [0, hi) with start <= pos.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > pos
	})

	for i := hi - 1; i >= 0; i-- {
		// If maxEnd[i] < pos, no interval from 0..i can contain pos.
		if t.maxEnd[i] < pos {
			break
		}
		if t.intervals[i].end >= pos {
			result = append(result, t.intervals[i].gene)
		}
	}

	return result
}

// FindFirst returns the overlapping gene that comes first in file order.
func (t *IntervalTree) FindFirst(pos int) (*Gene, bool) {
	var best *Gene
	for _, g := range t.FindOverlaps(pos) {
		if best == nil || g.Index < best.Index {
			best = g
		}
	}
	return best, best != nil
}
