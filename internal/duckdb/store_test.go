package duckdb

import (
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

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func beginRun(t *testing.T, s *Store) string {
	t.Helper()
	id, err := s.BeginRun(Run{Tumor: "tumor.bam", Genome: "hg38", Purity: 1})
	require.NoError(t, err)
	return id
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openInMemory(t)

	for _, table := range []string{"runs", "rearrangements", "translocations", "class_switch"} {
		var n int
		err := s.DB().QueryRow(
			"SELECT count(*) FROM information_schema.tables WHERE table_name = ?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestBeginRun(t *testing.T) {
	s := openInMemory(t)

	a := beginRun(t, s)
	b := beginRun(t, s)
	assert.NotEqual(t, a, b)

	var genome string
	var normal *string
	require.NoError(t, s.DB().QueryRow(
		"SELECT genome, normal FROM runs WHERE run_id = ?", a).Scan(&genome, &normal))
	assert.Equal(t, "hg38", genome)
	assert.Nil(t, normal)
}

func rearrangement(label string, score float64) *caller.Call {
	return &caller.Call{
		Locus: locus.IGH,
		Label: label,
		Candidate: &pairing.Candidate{
			Orientation: breakpoint.Deletion,
			Low:         pairing.Side{Gene: "IGHJ4", Start: 100, End: 150},
			High:        pairing.Side{Gene: "IGHV3-23", Start: 900, End: 1200},
			SplitReads:  2,
			InsertReads: 1,
		},
		Junction:     &consensus.Junction{J: "TGG", V: "TGT", VDJ: "TGTTGG", Sequenced: true},
		Productivity: productivity.Productive,
		CDR3:         "CARW",
		Homology:     productivity.Homology{Equal: 9, Total: 10, Valid: true},
		Score:        score,
		RawScore:     int(score),
		MapQ:         "60.0 (60-60)",
	}
}

func TestWriteRearrangements(t *testing.T) {
	s := openInMemory(t)
	id := beginRun(t, s)

	kept := rearrangement("IGHJ4 - IGHV3-23", 5)
	dropped := rearrangement("IGHJ6 - IGHV1-2", 2)
	dropped.Candidate = &pairing.Candidate{Orientation: breakpoint.Deletion}
	dropped.Homology = productivity.Homology{}
	passCopy := *kept
	passCopy.Label = "IGHJ4 - IGHV3-23 (2)"

	res := &caller.Result{All: []*caller.Call{kept, dropped}, Pass: []*caller.Call{&passCopy}}
	require.NoError(t, s.WriteRearrangements(id, res))

	n, err := s.CountRows("rearrangements", id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var label string
	var homology float64
	require.NoError(t, s.DB().QueryRow(
		"SELECT rearrangement, homology FROM rearrangements WHERE run_id = ? AND pass", id).Scan(&label, &homology))
	assert.Equal(t, "IGHJ4 - IGHV3-23 (2)", label)
	assert.InDelta(t, 90.0, homology, 1e-9)

	var missing *float64
	require.NoError(t, s.DB().QueryRow(
		"SELECT homology FROM rearrangements WHERE run_id = ? AND NOT pass", id).Scan(&missing))
	assert.Nil(t, missing)
}

func TestWriteTranslocations(t *testing.T) {
	s := openInMemory(t)
	id := beginRun(t, s)

	calls := []*transloc.Call{
		{
			Cluster:    &transloc.Cluster{Reads: 6},
			Annotation: "t(8;14)",
			Mechanism:  transloc.Translocation,
			Score:      6,
			Normal:     "NA",
			A:          transloc.Breakpoint{Chrom: "chr8", Pos: 128750000, Strand: '-'},
			B:          transloc.Breakpoint{Chrom: "chr14", Pos: 106500509, Strand: '+'},
			Pass:       true,
		},
		{
			Cluster:    &transloc.Cluster{Reads: 3, Normal: 4},
			Annotation: "del(chr14:106000000-106500000)",
			Mechanism:  transloc.Deletion,
			Score:      3,
			Normal:     "4",
		},
	}
	require.NoError(t, s.WriteTranslocations(id, calls))

	n, err := s.CountRows("translocations", id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var strand string
	var normal *int64
	require.NoError(t, s.DB().QueryRow(
		"SELECT strand_a, normal_reads FROM translocations WHERE mechanism = ?", transloc.Translocation).Scan(&strand, &normal))
	assert.Equal(t, "-", strand)
	assert.Nil(t, normal)

	require.NoError(t, s.DB().QueryRow(
		"SELECT normal_reads FROM translocations WHERE mechanism = ?", transloc.Deletion).Scan(&normal))
	require.NotNil(t, normal)
	assert.Equal(t, int64(4), *normal)
}

func TestWriteClassSwitch(t *testing.T) {
	s := openInMemory(t)
	id := beginRun(t, s)

	calls := []*csr.Call{{
		Isotype: "IGHG1", Orientation: breakpoint.Deletion, Score: 5,
		MeanA: 30, MeanB: 10, PValue: 1e-12, Reduction: 66.667, Pass: true,
	}}
	require.NoError(t, s.WriteClassSwitch(id, calls))

	var isotype string
	var reduction float64
	require.NoError(t, s.DB().QueryRow(
		"SELECT isotype, reduction FROM class_switch WHERE run_id = ?", id).Scan(&isotype, &reduction))
	assert.Equal(t, "IGHG1", isotype)
	assert.InDelta(t, 66.667, reduction, 1e-9)
}

func TestWriteEmpty(t *testing.T) {
	s := openInMemory(t)
	id := beginRun(t, s)

	require.NoError(t, s.WriteRearrangements(id, nil))
	require.NoError(t, s.WriteTranslocations(id, nil))
	require.NoError(t, s.WriteClassSwitch(id, nil))

	n, err := s.CountRows("class_switch", id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountRowsUnknownTable(t *testing.T) {
	s := openInMemory(t)
	_, err := s.CountRows("runs; DROP TABLE runs", "x")
	assert.Error(t, err)
}
