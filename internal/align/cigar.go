package align

import "github.com/biogo/hts/sam"

// RefLength returns the number of reference bases covered by c.
// Matches and deletions count; insertions and clips do not.
func RefLength(c sam.Cigar) int {
	n := 0
	for _, op := range c {
		if op.Type().Consumes().Reference > 0 {
			n += op.Len()
		}
	}
	return n
}

// SoftClipped returns the total soft-clipped length.
func SoftClipped(c sam.Cigar) int {
	return sumOf(c, sam.CigarSoftClipped)
}

// MatchedAndInserted returns the summed M and I lengths, the read offset
// where a trailing soft clip begins.
func MatchedAndInserted(c sam.Cigar) int {
	return sumOf(c, sam.CigarMatch, sam.CigarInsertion)
}

// ConsumedLength sums every operation except insertions and soft clips.
func ConsumedLength(c sam.Cigar) int {
	n := 0
	for _, op := range c {
		switch op.Type() {
		case sam.CigarInsertion, sam.CigarSoftClipped:
		default:
			n += op.Len()
		}
	}
	return n
}

// MatchBeforeClip reports whether the alignment block precedes the clipped
// part of the read: true with no soft clip at all, or when the first M
// operation comes before the first S operation.
func MatchBeforeClip(c sam.Cigar) bool {
	firstM, firstS := -1, -1
	for i, op := range c {
		switch op.Type() {
		case sam.CigarMatch:
			if firstM < 0 {
				firstM = i
			}
		case sam.CigarSoftClipped:
			if firstS < 0 {
				firstS = i
			}
		}
	}
	if firstS < 0 {
		return true
	}
	return firstM >= 0 && firstM < firstS
}

// HasSoftClip reports whether c contains an S operation.
func HasSoftClip(c sam.Cigar) bool {
	return SoftClipped(c) > 0
}

// SplitOffset is the distance from the alignment start to the split
// breakpoint: the last aligned base when the clip trails, zero otherwise.
func SplitOffset(c sam.Cigar) int {
	if MatchBeforeClip(c) {
		return RefLength(c) - 1
	}
	return 0
}

func sumOf(c sam.Cigar, types ...sam.CigarOpType) int {
	n := 0
	for _, op := range c {
		for _, t := range types {
			if op.Type() == t {
				n += op.Len()
				break
			}
		}
	}
	return n
}
