package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/caller"
	"github.com/inodb/igcall/internal/consensus"
	"github.com/inodb/igcall/internal/csr"
	"github.com/inodb/igcall/internal/locus"
	"github.com/inodb/igcall/internal/pairing"
	"github.com/inodb/igcall/internal/productivity"
	"github.com/inodb/igcall/internal/transloc"
)

func rows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	var out [][]string
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		out = append(out, strings.Split(line, "\t"))
	}
	return out
}

func TestTabWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf, "A", "B", "C")
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRow("x", "", "z"))
	require.NoError(t, w.Flush())
	assert.Equal(t, "A\tB\tC\nx\tNA\tz\n", buf.String())
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "4.0", float(4))
	assert.Equal(t, "83.333", float(83.333))
	assert.Equal(t, "0.0", float(0))
}

func TestRearrangementWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewRearrangementWriter(&buf)

	call := &caller.Call{
		Locus: locus.IGH,
		Label: "IGHJ4 - IGHD2-2 - IGHV3-23",
		Candidate: &pairing.Candidate{
			Orientation: breakpoint.Deletion,
			Low:         pairing.Side{Gene: "IGHJ4", Start: 1000, End: 1020, SingleSplits: 1},
			High:        pairing.Side{Gene: "IGHV3-23", Start: 5000, End: 5300},
			SplitReads:  3,
			InsertReads: 2,
		},
		Junction: &consensus.Junction{
			J: "CCAAA", D: "GG", V: "TTAC", VNormal: "TTAC", DGene: "IGHD2-2",
			VDJ: "CCAAAGGTTAC", Sequenced: true,
		},
		Productivity: productivity.Productive,
		CDR3:         "CARW",
		Homology:     productivity.Homology{Equal: 4, Total: 4, Valid: true},
		Score:        10,
		MapQ:         "60.0 (60-60)",
	}
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(call))

	kde := &caller.Call{
		Locus: locus.IGK,
		Label: "IGKKde - IGKRSS",
		Candidate: &pairing.Candidate{
			Orientation: breakpoint.Deletion,
			Low:         pairing.Side{Gene: "IGKKde", Start: 1, End: 10},
			High:        pairing.Side{Gene: "IGKRSS", Start: 20, End: 40},
		},
		Junction:     &consensus.Junction{},
		Productivity: productivity.NotAvailable,
		CDR3:         "NA",
		MapQ:         "NA",
	}
	require.NoError(t, w.Write(kde))
	require.NoError(t, w.Flush())

	got := rows(t, &buf)
	require.Len(t, got, 3)
	header := got[0]
	assert.Len(t, got[1], len(header))

	row := make(map[string]string)
	for i, col := range header {
		row[col] = got[1][i]
	}
	assert.Equal(t, "IGHJ4 - IGHD2-2 - IGHV3-23", row["Rearrangement"])
	assert.Equal(t, "1000", row["JStart"])
	assert.Equal(t, "1", row["JSingleSplits"])
	assert.Equal(t, "5300", row["VEnd"])
	assert.Equal(t, "GG", row["DSeq"])
	assert.Equal(t, "100.0", row["Homology"])
	assert.Equal(t, "4/4", row["HomologyBases"])
	assert.Equal(t, "10.0", row["Score"])

	kdeRow := make(map[string]string)
	for i, col := range header {
		kdeRow[col] = got[2][i]
	}
	assert.Equal(t, "NA", kdeRow["JSeq"])
	assert.Equal(t, "NA", kdeRow["Homology"])
	assert.Equal(t, "NA", kdeRow["DGene"])
}

func TestTranslocationWriters(t *testing.T) {
	c := &transloc.Call{
		Annotation: "t(8;14)",
		Mechanism:  transloc.Translocation,
		Score:      6,
		Normal:     "NA",
		A:          transloc.Breakpoint{Chrom: "chr8", Pos: 128750000, Strand: '-'},
		B:          transloc.Breakpoint{Chrom: "chr14", Pos: 106500509, Strand: '+'},
		Pass:       true,
	}
	fail := *c
	fail.Pass = false

	var all, pass bytes.Buffer
	aw, pw := NewTranslocationWriter(&all), NewTranslocationPassWriter(&pass)
	require.NoError(t, aw.WriteHeader())
	require.NoError(t, pw.WriteHeader())
	for _, call := range []*transloc.Call{c, &fail} {
		require.NoError(t, aw.Write(call))
		require.NoError(t, pw.Write(call))
	}
	require.NoError(t, aw.Flush())
	require.NoError(t, pw.Flush())

	got := rows(t, &all)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"t(8;14)", "Translocation", "6.0", "NA", "chr8", "128750000", "-", "chr14", "106500509", "+"}, got[1])

	got = rows(t, &pass)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"t(8;14) [chr8:128750000:-;chr14:106500509:+]", "Translocation", "6.0 (NA)"}, got[1])
}

func TestCSRWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSRWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(&csr.Call{
		Isotype:     "IGHG1",
		Orientation: breakpoint.Deletion,
		Score:       5,
		MeanA:       30,
		MeanB:       5,
		PValue:      1e-12,
		Reduction:   83.333,
	}))
	require.NoError(t, w.Flush())

	got := rows(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"IGHG1", "Deletion", "5.0", "30.0", "5.0", "1e-12", "83.333"}, got[1])
}
