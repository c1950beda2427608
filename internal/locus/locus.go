// Package locus describes the immunoglobulin loci the caller analyses and
// the per-locus constants every stage consults.
package locus

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Name identifies a locus.
type Name string

const (
	IGH Name = "IGH"
	IGK Name = "IGK"
	IGL Name = "IGL"
	CSR Name = "CSR" // IGH constant region, class-switch recombination
)

// Window extends a gene interval when matching breakpoints.
type Window struct {
	Before int
	After  int
}

// Anchors holds the codon offsets used to locate FR1-FR3 on the coding strand.
// All values are in nucleotides.
type Anchors struct {
	Cys23ToTrp41  int // Cys23 start to Trp41 search window start
	Trp41ToCys104 int // Trp41 to Cys104 search window start
	Cys23Margin   int // FR1 bases kept upstream of Cys23
	Trp41Margin   int // FR1 bases kept upstream of Trp41
	Trp41Window   int
	Cys104Window  int
}

// Locus bundles everything stage code needs to know about one locus.
type Locus struct {
	Name  Name
	Chrom string // chromosome with prefix, e.g. chr14
	// Region spans the whole IG locus; used to discard mates inside it.
	Start, End int

	// VIsLow is set when V genes sit at lower coordinates than J genes.
	// Breakpoint slots are genomic (low, high); this maps them to roles.
	VIsLow bool
	// CodingReverse is set when the locus is transcribed from the minus strand.
	CodingReverse bool
	// SoftClipSplits enables the soft-clip split trigger.
	SoftClipSplits bool
	// MatchD enables D-gene matching and requires a D for productivity.
	MatchD bool
	// RequiredClass restricts gene pairs to those containing this class letter.
	RequiredClass byte

	JWindow     Window
	OtherWindow Window
	Anchors     Anchors
}

var igh = Anchors{
	Cys23ToTrp41:  42,
	Trp41ToCys104: 174,
	Cys23Margin:   63,
	Trp41Margin:   105,
	Trp41Window:   30,
	Cys104Window:  36,
}

var light = Anchors{
	Cys23ToTrp41:  27,
	Trp41ToCys104: 144,
	Cys23Margin:   63,
	Trp41Margin:   99,
	Trp41Window:   30,
	Cys104Window:  36,
}

// Region is a named chromosome range.
type Region struct {
	Chrom      string
	Start, End int
}

// Genome-specific locus coordinates, chromosome names without prefix.
var coordinates = map[string]map[Name]Region{
	"hg19": {
		IGH: {"14", 106032614, 107288051},
		IGK: {"2", 89156874, 90274235},
		IGL: {"22", 22380474, 23265085},
	},
	"hg38": {
		IGH: {"14", 105586437, 106879844},
		IGK: {"2", 88857361, 90235368},
		IGL: {"22", 22026076, 22922913},
	},
}

// Lookup returns the locus definition for a genome build and chromosome prefix.
func Lookup(name Name, genome, chromPrefix string) (*Locus, error) {
	coords, ok := coordinates[genome]
	if !ok {
		return nil, fmt.Errorf("unknown genome version %q", genome)
	}

	l := &Locus{Name: name, SoftClipSplits: true}
	region := name
	switch name {
	case IGH:
		l.CodingReverse = true
		l.MatchD = true
		l.JWindow = Window{0, 10}
		l.OtherWindow = Window{10, 0}
		l.Anchors = igh
	case IGK:
		l.CodingReverse = true
		l.JWindow = Window{0, 10}
		l.OtherWindow = Window{10, 5}
		l.Anchors = light
	case IGL:
		l.VIsLow = true
		l.JWindow = Window{10, 0}
		l.OtherWindow = Window{0, 10}
		l.Anchors = light
	case CSR:
		region = IGH
		l.SoftClipSplits = false
		l.RequiredClass = 'M'
	default:
		return nil, fmt.Errorf("unknown locus %q", name)
	}

	r := coords[region]
	l.Chrom = chromPrefix + r.Chrom
	l.Start, l.End = r.Start, r.End
	return l, nil
}

// ParseNames parses a comma separated locus list.
func ParseNames(s string) ([]Name, error) {
	var names []Name
	for _, f := range strings.Split(s, ",") {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		switch Name(f) {
		case IGH, IGK, IGL, CSR:
			names = append(names, Name(f))
		default:
			return nil, fmt.Errorf("unknown locus %q", f)
		}
	}
	return names, nil
}

// Regions returns the three IG loci for a genome build in IGH, IGK, IGL order.
func Regions(genome, chromPrefix string) ([]Region, error) {
	coords, ok := coordinates[genome]
	if !ok {
		return nil, fmt.Errorf("unknown genome version %q", genome)
	}
	out := make([]Region, 0, 3)
	for _, n := range []Name{IGH, IGK, IGL} {
		r := coords[n]
		r.Chrom = chromPrefix + r.Chrom
		out = append(out, r)
	}
	return out, nil
}

// Files are the reference inputs of a locus.
type Files struct {
	BED      string
	DCatalog string // IGH only
}

// ReferenceFiles resolves the bundled annotation files below dir, laid out as
// <dir>/<genome>/<chr|nochr>/.
func ReferenceFiles(dir string, name Name, genome, chromPrefix string) (Files, error) {
	sub := "nochr"
	if chromPrefix != "" {
		sub = "chr"
	}
	base := filepath.Join(dir, genome, sub)

	var bed, dcat string
	switch genome {
	case "hg19":
		switch name {
		case IGH:
			bed = "wgEncodeGencodeBasicV19_hg19_IGH_genes_VJ.bed"
			dcat = "DB_D_genes_seq_wgEncodeGencodeBasicV19_hg19.txt"
		case IGK:
			bed = "wgEncodeGencodeBasicV19_hg19_IGK_genes_VJ.bed"
		case IGL:
			bed = "wgEncodeGencodeBasicV19_hg19_IGL_genes_VJ.bed"
		case CSR:
			bed = "hg19_Huebschmann_et_al_switch_regions.bed"
		}
	case "hg38":
		switch name {
		case IGH:
			bed = "GencodeV29_hg38_IGH_genes_VJ.bed"
			dcat = "DB_D_genes_seq_GencodeV29_hg38.txt"
		case IGK:
			bed = "GencodeV29_hg38_IGK_genes_VJ.bed"
		case IGL:
			bed = "GencodeV29_hg38_IGL_genes_VJ.bed"
		case CSR:
			bed = "hg38_liftOver_Huebschmann_et_al_switch_regions.bed"
		}
	default:
		return Files{}, fmt.Errorf("unknown genome version %q", genome)
	}
	if bed == "" {
		return Files{}, fmt.Errorf("unknown locus %q", name)
	}

	f := Files{BED: filepath.Join(base, bed)}
	if dcat != "" {
		f.DCatalog = filepath.Join(base, dcat)
	}
	return f, nil
}
