package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/locus"
)

func newTestPairer(t *testing.T, name locus.Name, genes ...*cache.Gene) *Pairer {
	t.Helper()
	l, err := locus.Lookup(name, "hg19", "chr")
	require.NoError(t, err)
	return NewPairer(l, cache.NewAnnotation(genes))
}

func splitRecord(name string, low, high int, lowGene, highGene string, o breakpoint.Orientation) *breakpoint.Classified {
	return &breakpoint.Classified{
		Record:      &align.Record{Name: name},
		Evidence:    breakpoint.Split,
		Split:       [2]int{low, high},
		Genes:       [4]string{lowGene, highGene, "", ""},
		Orientation: o,
	}
}

func insertRecord(name string, low, high int, lowGene, highGene string, o breakpoint.Orientation) *breakpoint.Classified {
	return &breakpoint.Classified{
		Record:      &align.Record{Name: name},
		Evidence:    breakpoint.InsertSize,
		Insert:      [2]int{low, high},
		Genes:       [4]string{"", "", lowGene, highGene},
		Orientation: o,
	}
}

func TestPairer_ConcordantSplits(t *testing.T) {
	p := newTestPairer(t, locus.IGL,
		&cache.Gene{Name: "IGLV1-40", Start: 1000, End: 1050},
		&cache.Gene{Name: "IGLJ1", Start: 2000, End: 2020},
	)
	records := []*breakpoint.Classified{
		splitRecord("r1", 1020, 2010, "IGLV1-40", "IGLJ1", breakpoint.Deletion),
		splitRecord("r2", 1020, 2010, "IGLV1-40", "IGLJ1", breakpoint.Deletion),
		insertRecord("r3", 1030, 2005, "IGLV1-40", "IGLJ1", breakpoint.Deletion),
	}

	res := p.Pair(records)
	require.Len(t, res.Candidates, 1)
	c := res.Candidates[0]

	assert.Equal(t, "IGLJ1 - IGLV1-40", c.Label())
	assert.Equal(t, "IGLV1-40 - IGLJ1", c.GenomicLabel())
	assert.Equal(t, breakpoint.Deletion, c.Orientation)
	assert.Equal(t, 2, c.SplitReads)
	assert.Equal(t, 1, c.InsertReads)
	assert.Equal(t, Side{Gene: "IGLV1-40", Start: 1000, End: 1020}, c.Low)
	assert.Equal(t, Side{Gene: "IGLJ1", Start: 2010, End: 2020}, c.High)
	assert.GreaterOrEqual(t, c.Score(1.0), 4.0)
	assert.Equal(t, 5.0, c.Score(1.0))
	assert.Equal(t, 10.0, c.Score(0.5))
}

func TestPairer_Keys(t *testing.T) {
	p := newTestPairer(t, locus.IGH)
	records := []*breakpoint.Classified{
		splitRecord("a", 1, 2, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
		splitRecord("b", 1, 2, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
		splitRecord("c", 1, 2, "IGHV1-2", "IGHV3-23", breakpoint.Deletion),
		splitRecord("d", 1, 0, "IGHJ4", "", breakpoint.NotComplete),
		insertRecord("e", 1, 2, "IGHJ4", "IGHV3-23", breakpoint.Inversion2),
	}
	assert.Equal(t, []Key{
		{"IGHJ4 - IGHV3-23", breakpoint.Deletion},
		{"IGHJ4 - IGHV3-23", breakpoint.Inversion2},
	}, p.Keys(records))
}

func TestPairer_KeysRequireClass(t *testing.T) {
	p := newTestPairer(t, locus.CSR)
	records := []*breakpoint.Classified{
		insertRecord("a", 1, 2, "IGHM", "IGHG1", breakpoint.Deletion),
		insertRecord("b", 1, 2, "IGHA1", "IGHG1", breakpoint.Deletion),
	}
	assert.Equal(t, []Key{{"IGHM - IGHG1", breakpoint.Deletion}}, p.Keys(records))
}

func TestPairer_SynthesizesFromSingleSplits(t *testing.T) {
	p := newTestPairer(t, locus.IGH,
		&cache.Gene{Name: "IGHJ4", Start: 1000, End: 1050},
		&cache.Gene{Name: "IGHV3-23", Start: 5000, End: 5300},
	)
	records := []*breakpoint.Classified{
		insertRecord("i1", 1040, 5100, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
		insertRecord("i2", 1041, 5101, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
		splitRecord("s1", 1020, 0, "IGHJ4", "", breakpoint.NotComplete),
		splitRecord("s2", 5200, 0, "IGHV3-23", "", breakpoint.NotComplete),
		splitRecord("s3", 5250, 0, "IGHV3-23", "", breakpoint.Inversion2),
	}

	res := p.Pair(records)
	require.Len(t, res.Candidates, 1)
	c := res.Candidates[0]
	assert.Equal(t, [2]int{1020, 5200}, c.Breaks)
	assert.Equal(t, breakpoint.Deletion, c.Orientation)
	assert.Equal(t, 0, c.SplitReads)
	assert.Equal(t, 2, c.InsertReads)
	assert.Equal(t, Side{Gene: "IGHJ4", Start: 1000, End: 1020}, c.Low)
	assert.Equal(t, Side{Gene: "IGHV3-23", Start: 5200, End: 5300}, c.High)
	assert.Equal(t, []Key{{"IGHJ4 - IGHV3-23", breakpoint.Deletion}}, res.Counts.InsertKeys())
}

func TestPairer_WidensToInsertBoundaries(t *testing.T) {
	p := newTestPairer(t, locus.IGH,
		&cache.Gene{Name: "IGHJ4", Start: 1000, End: 1050},
		&cache.Gene{Name: "IGHV3-23", Start: 5000, End: 5300},
	)
	records := []*breakpoint.Classified{
		insertRecord("i1", 1040, 5100, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
	}

	res := p.Pair(records)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, [2]int{1040, 5100}, res.Candidates[0].Breaks)
}

func TestPairer_DropsNarrowWindows(t *testing.T) {
	p := newTestPairer(t, locus.IGH,
		&cache.Gene{Name: "IGHJ4", Start: 1000, End: 1050},
		&cache.Gene{Name: "IGHV3-23", Start: 5000, End: 5300},
	)
	records := []*breakpoint.Classified{
		splitRecord("low", 1003, 5100, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
		splitRecord("high", 1020, 5295, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
		splitRecord("ok", 1020, 5100, "IGHJ4", "IGHV3-23", breakpoint.Deletion),
	}

	res := p.Pair(records)
	require.Len(t, res.Candidates, 1)
	for _, c := range res.Candidates {
		assert.GreaterOrEqual(t, c.J().Span(), MinLowSpan)
		assert.GreaterOrEqual(t, c.V().Span(), MinHighSpan)
	}
	assert.Equal(t, [2]int{1020, 5100}, res.Candidates[0].Breaks)
}

func TestPairer_InversionBoundaries(t *testing.T) {
	p := newTestPairer(t, locus.IGH,
		&cache.Gene{Name: "IGHJ4", Start: 1000, End: 1050},
		&cache.Gene{Name: "IGHV3-23", Start: 5000, End: 5300},
	)
	records := []*breakpoint.Classified{
		splitRecord("inv1", 1020, 5100, "IGHJ4", "IGHV3-23", breakpoint.Inversion1),
		splitRecord("inv2", 1030, 5150, "IGHJ4", "IGHV3-23", breakpoint.Inversion2),
	}

	res := p.Pair(records)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, Side{Gene: "IGHJ4", Start: 1020, End: 1050}, res.Candidates[0].Low)
	assert.Equal(t, Side{Gene: "IGHV3-23", Start: 5100, End: 5300}, res.Candidates[0].High)
	assert.Equal(t, Side{Gene: "IGHJ4", Start: 1000, End: 1030}, res.Candidates[1].Low)
	assert.Equal(t, Side{Gene: "IGHV3-23", Start: 5000, End: 5150}, res.Candidates[1].High)
}

func TestMostCommon_TieGoesToFirst(t *testing.T) {
	o, ok := mostCommon([]breakpoint.Orientation{breakpoint.Inversion2, breakpoint.Deletion, breakpoint.Deletion, breakpoint.Inversion2})
	require.True(t, ok)
	assert.Equal(t, breakpoint.Inversion2, o)

	_, ok = mostCommon(nil)
	assert.False(t, ok)
}
