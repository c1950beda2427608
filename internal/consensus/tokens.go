package consensus

import "strings"

// Consensus sequences are token strings: plain bases, "A[CG]" for CG
// inserted after A, and "A(CT)" for CT deleted after A.

var complement = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N', 'R': 'R',
	'[': ']', ']': '[', '(': ')', ')': '(',
}

// ReverseComplement reverse-complements a token string. Brackets swap so
// markers stay well formed.
func ReverseComplement(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := complement[s[len(s)-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// Plain drops deleted bases and insertion brackets, keeping inserted bases.
func Plain(s string) string {
	return removeBrackets(RemoveDeletions(s))
}

// WithDeletions drops inserted bases and keeps deleted bases as plain
// bases, the reference-length form used for reading-frame analysis.
func WithDeletions(s string) string {
	s = removeMarked(s, '[', ']')
	return strings.NewReplacer("(", "", ")", "").Replace(s)
}

// RemoveDeletions drops every "(...)" group.
func RemoveDeletions(s string) string {
	return removeMarked(s, '(', ')')
}

// HasIndel reports whether s carries insertion or deletion markers.
func HasIndel(s string) bool {
	return strings.ContainsAny(s, "[(")
}

func removeBrackets(s string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(s)
}

func removeMarked(s string, open, close byte) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == open:
			depth++
		case c == close && depth > 0:
			depth--
		case depth == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// trimLeadingInsertion drops an insertion that opens s ("[CG]T..." -> "T...").
func trimLeadingInsertion(s string) string {
	if !strings.HasPrefix(s, "[") {
		return s
	}
	if i := strings.IndexByte(s, ']'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// trimTrailingInsertion drops an insertion that closes s ("...A[CG]" -> "...A").
func trimTrailingInsertion(s string) string {
	if !strings.HasSuffix(s, "]") {
		return s
	}
	if i := strings.LastIndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}

// leadingInsertion returns the bases of an insertion opening s.
func leadingInsertion(s string) string {
	if !strings.HasPrefix(s, "[") {
		return ""
	}
	i := strings.IndexByte(s, ']')
	if i < 0 {
		return ""
	}
	return s[1:i]
}

// trailingInsertion returns the bases of an insertion closing s.
func trailingInsertion(s string) string {
	if !strings.HasSuffix(s, "]") {
		return ""
	}
	i := strings.LastIndexByte(s, '[')
	if i < 0 {
		return ""
	}
	return s[i+1 : len(s)-1]
}
