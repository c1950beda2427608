// Package cache provides the reference annotation used by the caller:
// IG gene segments from BED files and the D-gene sequence catalog.
package cache

// Gene is an IG gene segment (or switch region) read from a locus BED file.
type Gene struct {
	Name  string // e.g. IGHJ4, IGHV3-23, IGKKde
	Chrom string
	Start int
	End   int
	Index int // line order in the BED file
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int) bool {
	return pos >= g.Start && pos <= g.End
}

// Class returns the segment class letter (J, V, D, M, ...), the fourth
// character of the gene name, or 0 for shorter names.
func (g *Gene) Class() byte {
	return GeneClass(g.Name)
}

// GeneClass returns the fourth character of an IG gene name.
func GeneClass(name string) byte {
	if len(name) < 4 {
		return 0
	}
	return name[3]
}
