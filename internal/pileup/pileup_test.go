package pileup

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally(t *testing.T) {
	tests := []struct {
		name  string
		calls string
		ref   byte
		want  []Call
	}{
		{"reference", "..,,", 'A', []Call{{"A", 4}}},
		{"substitution", ".,Tt.", 'C', []Call{{"C", 3}, {"T", 2}}},
		{"insertion", ".+2AG.,+2ag", 'C', []Call{{"C[AG]", 2}, {"C", 1}}},
		{"deletion", ".-3ACT.-3act,", 'G', []Call{{"G(ACT)", 2}, {"G", 1}}},
		{"read start and end", "^I.$^A,", 'T', []Call{{"T", 2}}},
		{"long insertion", ".+12ACGTACGTACGT", 'A', []Call{{"A[ACGTACGTACGT]", 1}, {"A", 0}}},
		{"deleted base placeholder", "**..", 'G', []Call{{"G", 2}}},
		{"empty", "", 'A', []Call{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tally(tt.calls, tt.ref))
		})
	}
}

func TestDeletedLength(t *testing.T) {
	assert.Equal(t, 2, DeletedLength("A(CT)"))
	assert.Equal(t, 0, DeletedLength("A[CT]"))
	assert.Equal(t, 0, DeletedLength("A"))
}

func TestReadLines(t *testing.T) {
	input := "chr14\t100\ta\t3\t.,T\tIII\nchr14\t102\tG\t0\t\t\n"
	lines, err := ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Chrom: "chr14", Pos: 100, Ref: 'A', Depth: 3, Calls: ".,T"}, lines[0])
	assert.Equal(t, 102, lines[1].Pos)

	_, err = ReadLines(strings.NewReader("chr14\tx\tA\t1\t.\n"))
	assert.Error(t, err)
}

func TestDepths(t *testing.T) {
	lines := []Line{{Pos: 10, Depth: 4}, {Pos: 12, Depth: 6}, {Pos: 20, Depth: 1}}
	assert.Equal(t, []float64{4, 0, 6, 0}, Depths(lines, 10, 13))
	assert.Nil(t, Depths(lines, 5, 4))
}

func TestSamtoolsProvider_Args(t *testing.T) {
	p := NewSamtoolsProvider("")
	assert.Equal(t, "samtools", p.Path)

	req := Request{Chrom: "chr14", Start: 10, End: 20, BAM: "t.bam", BaseQuality: 20, Anomalous: true}
	assert.Equal(t, []string{"mpileup", "-B", "-A", "-Q", "20", "-r", "chr14:10-20", "t.bam"}, p.Args(req))

	req.Anomalous = false
	req.Reference = "ref.fa"
	assert.Equal(t, []string{"mpileup", "-B", "-Q", "20", "-f", "ref.fa", "-r", "chr14:10-20", "t.bam"}, p.Args(req))
}

func fakeSamtools(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	path := filepath.Join(t.TempDir(), "samtools")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestSamtoolsProvider_Pileup(t *testing.T) {
	path := fakeSamtools(t, "printf 'chr14\\t10\\tA\\t2\\t.,\\tII\\n'\n")
	lines, err := NewSamtoolsProvider(path).Pileup(context.Background(), Request{Chrom: "chr14", Start: 10, End: 10, BAM: "x.bam"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Depth)
}

func TestSamtoolsProvider_Failure(t *testing.T) {
	path := fakeSamtools(t, "echo 'no such file' >&2\nexit 1\n")
	_, err := NewSamtoolsProvider(path).Pileup(context.Background(), Request{Chrom: "chr14", Start: 1, End: 2, BAM: "x.bam"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")
}
