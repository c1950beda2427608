// Package align provides alignment record access for IG rearrangement calling:
// flag decoding, CIGAR arithmetic, supplementary alignment tags and SAM/BAM readers.
package align

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// SameRef is the mate reference marker used when the mate maps to the read's own reference.
const SameRef = "="

var saTag = []byte("SA")

// Record is a single aligned read as consumed by the caller.
// Positions are 1-based, as in SAM text.
type Record struct {
	Name    string
	Flag    uint16
	Ref     string
	Pos     int
	MapQ    int
	Cigar   sam.Cigar
	MateRef string // SameRef when the mate is on Ref
	MatePos int
	TempLen int
	Seq     string
	Qual    []byte
	SA      *Supplementary
}

// Supplementary is the first entry of an SA:Z tag.
type Supplementary struct {
	Chrom  string
	Pos    int
	Strand byte
	Cigar  sam.Cigar
	MapQ   int
	NM     int
}

// Bits returns the decoded flag.
func (r *Record) Bits() FlagBits {
	return DecodeFlag(r.Flag)
}

// Reverse reports whether the read aligned to the reverse strand.
func (r *Record) Reverse() bool {
	return r.Bits()[BitReverse]
}

// Strand returns '+' or '-'.
func (r *Record) Strand() byte {
	if r.Reverse() {
		return '-'
	}
	return '+'
}

// MateStrand returns '+' or '-' for the mate.
func (r *Record) MateStrand() byte {
	if r.Bits()[BitMateReverse] {
		return '-'
	}
	return '+'
}

// Informative reports whether the record carries a CIGAR and a mate on the same reference.
func (r *Record) Informative() bool {
	return len(r.Cigar) > 0 && r.MateRef == SameRef
}

// FromSAM converts a biogo record. A nil reference becomes "*".
func FromSAM(s *sam.Record) (*Record, error) {
	r := &Record{
		Name:    s.Name,
		Flag:    uint16(s.Flags),
		Ref:     refName(s.Ref),
		Pos:     s.Pos + 1,
		MapQ:    int(s.MapQ),
		Cigar:   s.Cigar,
		MatePos: s.MatePos + 1,
		TempLen: s.TempLen,
		Seq:     string(s.Seq.Expand()),
		Qual:    s.Qual,
	}
	switch {
	case s.MateRef == nil:
		r.MateRef = "*"
	case s.MateRef == s.Ref || s.MateRef.Name() == r.Ref:
		r.MateRef = SameRef
	default:
		r.MateRef = s.MateRef.Name()
	}

	if aux, ok := s.Tag(saTag); ok {
		v, ok := aux.Value().(string)
		if ok {
			sa, err := ParseSA(v)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", s.Name, err)
			}
			r.SA = sa
		}
	}
	return r, nil
}

func refName(ref *sam.Reference) string {
	if ref == nil {
		return "*"
	}
	return ref.Name()
}

// ParseSAMLine parses one SAM text line without a header.
func ParseSAMLine(line []byte) (*Record, error) {
	var s sam.Record
	if err := s.UnmarshalText(line); err != nil {
		return nil, fmt.Errorf("parse sam line: %w", err)
	}
	return FromSAM(&s)
}

// ErrBadSA is returned for SA tag values that cannot be parsed.
var ErrBadSA = errors.New("malformed SA tag")

// ParseSA parses the first alignment of an SA tag value
// ("chr,pos,strand,CIGAR,mapQ,NM;...").
func ParseSA(v string) (*Supplementary, error) {
	first, _, _ := strings.Cut(v, ";")
	f := strings.Split(first, ",")
	if len(f) < 4 {
		return nil, fmt.Errorf("%w: %q", ErrBadSA, v)
	}
	pos, err := strconv.Atoi(f[1])
	if err != nil {
		return nil, fmt.Errorf("%w: position %q", ErrBadSA, f[1])
	}
	if f[2] != "+" && f[2] != "-" {
		return nil, fmt.Errorf("%w: strand %q", ErrBadSA, f[2])
	}
	cigar, err := sam.ParseCigar([]byte(f[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: cigar %q", ErrBadSA, f[3])
	}
	sa := &Supplementary{Chrom: f[0], Pos: pos, Strand: f[2][0], Cigar: cigar}
	if len(f) > 4 {
		sa.MapQ, _ = strconv.Atoi(f[4])
	}
	if len(f) > 5 {
		sa.NM, _ = strconv.Atoi(f[5])
	}
	return sa, nil
}
