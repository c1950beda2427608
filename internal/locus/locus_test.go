package locus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name          Name
		genome        string
		prefix        string
		chrom         string
		vIsLow        bool
		codingReverse bool
		matchD        bool
	}{
		{IGH, "hg19", "chr", "chr14", false, true, true},
		{IGK, "hg38", "", "2", false, true, false},
		{IGL, "hg19", "chr", "chr22", true, false, false},
		{CSR, "hg38", "chr", "chr14", false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			l, err := Lookup(tt.name, tt.genome, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.chrom, l.Chrom)
			assert.Equal(t, tt.vIsLow, l.VIsLow)
			assert.Equal(t, tt.codingReverse, l.CodingReverse)
			assert.Equal(t, tt.matchD, l.MatchD)
			assert.Less(t, l.Start, l.End)
		})
	}
}

func TestLookupCSRUsesHeavyChainRegion(t *testing.T) {
	igh, err := Lookup(IGH, "hg38", "chr")
	require.NoError(t, err)
	csr, err := Lookup(CSR, "hg38", "chr")
	require.NoError(t, err)

	assert.Equal(t, igh.Start, csr.Start)
	assert.Equal(t, igh.End, csr.End)
	assert.False(t, csr.SoftClipSplits)
	assert.Equal(t, byte('M'), csr.RequiredClass)
}

func TestLookupErrors(t *testing.T) {
	_, err := Lookup(IGH, "hg37", "chr")
	assert.Error(t, err)
	_, err = Lookup("TRB", "hg19", "chr")
	assert.Error(t, err)
}

func TestParseNames(t *testing.T) {
	names, err := ParseNames(" igh,IGL, ,csr")
	require.NoError(t, err)
	assert.Equal(t, []Name{IGH, IGL, CSR}, names)

	_, err = ParseNames("IGH,TRA")
	assert.Error(t, err)
}

func TestRegions(t *testing.T) {
	regions, err := Regions("hg19", "chr")
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Equal(t, "chr14", regions[0].Chrom)
	assert.Equal(t, "chr2", regions[1].Chrom)
	assert.Equal(t, "chr22", regions[2].Chrom)

	_, err = Regions("mm10", "")
	assert.Error(t, err)
}

func TestReferenceFiles(t *testing.T) {
	f, err := ReferenceFiles("ref", IGH, "hg38", "chr")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("ref", "hg38", "chr", "GencodeV29_hg38_IGH_genes_VJ.bed"), f.BED)
	assert.Equal(t, filepath.Join("ref", "hg38", "chr", "DB_D_genes_seq_GencodeV29_hg38.txt"), f.DCatalog)

	f, err = ReferenceFiles("ref", IGL, "hg19", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("ref", "hg19", "nochr", "wgEncodeGencodeBasicV19_hg19_IGL_genes_VJ.bed"), f.BED)
	assert.Empty(t, f.DCatalog)

	_, err = ReferenceFiles("ref", IGK, "hg40", "chr")
	assert.Error(t, err)
}
