package productivity

import "strings"

// Standard genetic code: DNA codon to amino acid (single letter).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// TranslateCodon translates a DNA codon to its amino acid.
// Returns 'X' for unknown codons and '*' for stop codons.
func TranslateCodon(codon string) byte {
	if aa, ok := codonTable[codon]; ok {
		return aa
	}
	return 'X'
}

// IsStopCodon returns true if the codon is a stop codon (TAA, TAG, TGA).
func IsStopCodon(codon string) bool {
	return TranslateCodon(codon) == '*'
}

// Codons splits seq into complete codons from its first base.
func Codons(seq string) []string {
	n := len(seq) / 3
	out := make([]string, n)
	for i := range n {
		out[i] = seq[i*3 : i*3+3]
	}
	return out
}

// HasStopCodon reports whether any in-frame codon of seq is a stop.
func HasStopCodon(seq string) bool {
	for _, c := range Codons(seq) {
		if IsStopCodon(c) {
			return true
		}
	}
	return false
}

// TranslateJunction translates seq codon by codon. Codons containing an
// unknown base become '?', codons holding a frame-shift marker '.' become '#'.
func TranslateJunction(seq string) string {
	codons := Codons(seq)
	var b strings.Builder
	b.Grow(len(codons))
	for _, c := range codons {
		switch {
		case strings.Contains(c, "N"):
			b.WriteByte('?')
		case strings.Contains(c, "."):
			b.WriteByte('#')
		default:
			b.WriteByte(TranslateCodon(c))
		}
	}
	return b.String()
}

// codonIndexes returns the indexes of codons in seq matching any of want.
func codonIndexes(seq string, want ...string) []int {
	var out []int
	for i, c := range Codons(seq) {
		for _, w := range want {
			if c == w {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// motifStarts returns every start position of any motif, overlaps included.
func motifStarts(seq string, motifs ...string) []int {
	var out []int
	for i := 0; i+3 <= len(seq); i++ {
		for _, m := range motifs {
			if seq[i:i+3] == m {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
