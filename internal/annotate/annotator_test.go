package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/locus"
)

func newTestAnnotator(t *testing.T, name locus.Name) *Annotator {
	t.Helper()
	l, err := locus.Lookup(name, "hg19", "chr")
	require.NoError(t, err)
	genes := cache.NewAnnotation([]*cache.Gene{
		{Name: string(name) + "J4", Start: 1000, End: 1050},
		{Name: string(name) + "V3-23", Start: 5000, End: 5300},
	})
	return NewAnnotator(l, genes)
}

func TestAnnotator_GeneWindows(t *testing.T) {
	tests := []struct {
		locus locus.Name
		pos   int
		want  string
	}{
		{locus.IGH, 1060, "IGHJ4"},
		{locus.IGH, 1061, ""},
		{locus.IGH, 999, ""},
		{locus.IGH, 4990, "IGHV3-23"},
		{locus.IGH, 5301, ""},
		{locus.IGK, 5305, "IGKV3-23"},
		{locus.IGK, 4990, "IGKV3-23"},
		{locus.IGL, 990, "IGLJ4"},
		{locus.IGL, 1051, ""},
		{locus.IGL, 5310, "IGLV3-23"},
		{locus.IGL, 4999, ""},
		{locus.IGH, 0, ""},
	}
	for _, tt := range tests {
		a := newTestAnnotator(t, tt.locus)
		assert.Equal(t, tt.want, a.Gene(tt.pos), "%s pos %d", tt.locus, tt.pos)
	}
}

func TestAnnotator_Annotate(t *testing.T) {
	a := newTestAnnotator(t, locus.IGH)
	tbl := breakpoint.NewTable()

	split := &breakpoint.Classified{
		Record:   &align.Record{Name: "split", Flag: 99, TempLen: 300, SA: &align.Supplementary{Strand: '+'}},
		Evidence: breakpoint.Split,
		Split:    [2]int{1055, 4995},
	}
	nowhere := &breakpoint.Classified{
		Record:   &align.Record{Name: "nowhere", Flag: 97, TempLen: 20000},
		Evidence: breakpoint.InsertSize,
		Insert:   [2]int{20000, 0},
	}
	unknownFlag := &breakpoint.Classified{
		Record:   &align.Record{Name: "dup", Flag: 1121, TempLen: 20000},
		Evidence: breakpoint.InsertSize,
		Insert:   [2]int{1040, 0},
	}
	insert := &breakpoint.Classified{
		Record:   &align.Record{Name: "insert", Flag: 145, TempLen: -20000},
		Evidence: breakpoint.InsertSize,
		Insert:   [2]int{0, 5100},
	}
	clipped := &breakpoint.Classified{
		Record:   &align.Record{Name: "clipped", Flag: 99, TempLen: 300},
		Evidence: breakpoint.Split,
		Split:    [2]int{1030, 0},
	}
	for _, c := range []*breakpoint.Classified{split, nowhere, unknownFlag, insert, clipped} {
		tbl.Add(c)
	}

	kept := a.Annotate(tbl)
	require.Len(t, kept, 3)

	assert.Equal(t, "split", kept[0].Name)
	assert.Equal(t, [4]string{"IGHJ4", "IGHV3-23", "", ""}, kept[0].Genes)
	assert.Equal(t, breakpoint.Deletion, kept[0].Orientation)

	assert.Equal(t, "insert", kept[1].Name)
	assert.Equal(t, [4]string{"", "", "", "IGHV3-23"}, kept[1].Genes)
	assert.Equal(t, breakpoint.Deletion, kept[1].Orientation)

	assert.Equal(t, "clipped", kept[2].Name)
	assert.Equal(t, breakpoint.NotComplete, kept[2].Orientation)
}
