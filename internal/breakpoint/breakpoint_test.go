package breakpoint

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/locus"
)

func testLocus(t *testing.T, name locus.Name) *locus.Locus {
	t.Helper()
	l, err := locus.Lookup(name, "hg19", "chr")
	require.NoError(t, err)
	return l
}

func rec(t *testing.T, name string, flag uint16, pos int, cigar string, tlen int, sa string) *align.Record {
	t.Helper()
	c, err := sam.ParseCigar([]byte(cigar))
	require.NoError(t, err)
	r := &align.Record{
		Name: name, Flag: flag, Ref: "chr14", Pos: pos, MapQ: 60, Cigar: c,
		MateRef: align.SameRef, MatePos: pos + tlen, TempLen: tlen,
	}
	if sa != "" {
		r.SA, err = align.ParseSA(sa)
		require.NoError(t, err)
	}
	return r
}

func TestClassify_SplitWithSA(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))

	cr := c.Classify(rec(t, "r1", 99, 1000, "70M30S", 300, "chr14,5000,+,70S30M,60,0"))
	require.NotNil(t, cr)
	assert.Equal(t, Split, cr.Evidence)
	assert.Equal(t, [2]int{1069, 5000}, cr.Split)
	assert.Equal(t, [2]int{0, 0}, cr.Insert)
	assert.Equal(t, Deletion, SplitOrientation(cr.Record))
}

func TestClassify_SplitOverlapSubtracted(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))

	// SA aligns 30 bases, the primary clips 28: two bases are shared.
	cr := c.Classify(rec(t, "r1", 99, 1000, "72M28S", 300, "chr14,5000,+,70S30M,60,0"))
	require.NotNil(t, cr)
	assert.Equal(t, [2]int{1071 - 2, 5000}, cr.Split)
}

func TestClassify_SplitLowIsSA(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))

	cr := c.Classify(rec(t, "r1", 83, 9000, "40S60M", -300, "chr14,2000,-,40M60S,60,0"))
	require.NotNil(t, cr)
	assert.Equal(t, [2]int{2039, 9000}, cr.Split)
}

func TestClassify_SAOnOtherChromosome(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))

	cr := c.Classify(rec(t, "r1", 99, 1000, "70M30S", 300, "chr8,5000,+,70S30M,60,0"))
	require.NotNil(t, cr)
	assert.Equal(t, [2]int{1069, 0}, cr.Split)
}

func TestClassify_SoftClipTrigger(t *testing.T) {
	igh := NewClassifier(testLocus(t, locus.IGH))
	csr := NewClassifier(testLocus(t, locus.CSR))

	r := rec(t, "r1", 99, 1000, "70M30S", 300, "")
	cr := igh.Classify(r)
	require.NotNil(t, cr)
	assert.Equal(t, Split, cr.Evidence)
	assert.Equal(t, NotComplete, SplitOrientation(r))

	assert.Nil(t, csr.Classify(r), "soft clips alone do not make split reads at the switch locus")
	assert.Nil(t, igh.Classify(rec(t, "r2", 99, 1000, "80M20S", 300, "")), "20 clipped bases are not enough")
}

func TestClassify_InsertSizeSlots(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))

	tests := []struct {
		name string
		flag uint16
		pos  int
		tlen int
		want [2]int
	}{
		{"97 forward read1", 97, 1000, 20000, [2]int{1099, 0}},
		{"145 reverse read2", 145, 21000, -20000, [2]int{0, 21000}},
		{"81 reverse read1", 81, 21000, -20000, [2]int{0, 21000}},
		{"161 forward read2", 161, 1000, 20000, [2]int{1099, 0}},
		{"129 forward read2", 129, 21000, -20000, [2]int{0, 21099}},
		{"113 reverse read1", 113, 1000, 20000, [2]int{1000, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := c.Classify(rec(t, "r", tt.flag, tt.pos, "100M", tt.tlen, ""))
			require.NotNil(t, cr)
			assert.Equal(t, InsertSize, cr.Evidence)
			assert.Equal(t, tt.want, cr.Insert)
		})
	}

	assert.Nil(t, c.Classify(rec(t, "r", 65, 1000, "100M", -20000, "")), "ambiguous orientation yields no slot")
}

func TestClassify_Uninformative(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))

	r := rec(t, "r1", 97, 1000, "100M", 20000, "")
	r.MateRef = "chr8"
	assert.Nil(t, c.Classify(r))

	r = rec(t, "r1", 97, 1000, "100M", 200, "")
	assert.Nil(t, c.Classify(r), "concordant pair without clipping")
}

func TestTable_SplitSupersedesInsert(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))
	tbl := c.BuildFrom([]*align.Record{
		rec(t, "q", 97, 1000, "100M", 20000, ""),
		rec(t, "q", 145, 20900, "70S30M", -20000, "chr14,1070,+,70M30S,60,0"),
	})

	require.Equal(t, 1, tbl.Len())
	got, ok := tbl.Get("q")
	require.True(t, ok)
	assert.Equal(t, SplitInsertSize, got.Evidence)
	assert.Equal(t, [2]int{1099, 20900}, got.Insert, "insert slot carried over from the stored mate")
	assert.Equal(t, [2]int{1139, 20900}, got.Split)
}

func TestTable_InsertFillsUnsetSlot(t *testing.T) {
	c := NewClassifier(testLocus(t, locus.IGH))
	tbl := c.BuildFrom([]*align.Record{
		rec(t, "a", 97, 1000, "100M", 20000, ""),
		rec(t, "b", 97, 3000, "100M", 20000, ""),
		rec(t, "a", 145, 21000, "100M", -20000, ""),
		rec(t, "a", 145, 25000, "100M", -20000, ""),
	})

	recs := tbl.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Name)
	assert.Equal(t, "b", recs[1].Name)
	assert.Equal(t, [2]int{1099, 21000}, recs[0].Insert, "set slots are never overwritten")
}
