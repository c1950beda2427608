package pileup

import (
	"sort"
	"strings"
)

// Call is a distinct observation at one position: a base, an insertion
// after a base ("A[CG]") or a deletion after a base ("A(CT)").
type Call struct {
	Token string
	Count int
}

// DeletedLength returns the number of reference positions a deletion spans.
func DeletedLength(token string) int {
	open := strings.IndexByte(token, '(')
	if open < 0 || !strings.HasSuffix(token, ")") {
		return 0
	}
	return len(token) - open - 2
}

// Tally counts the calls of one pileup column, highest count first and
// ties in order of first appearance. Reference matches become ref. An indel
// is attributed to the base it follows, whose plain count drops by one.
func Tally(calls string, ref byte) []Call {
	var order []string
	counts := make(map[string]int)
	add := func(tok string, n int) {
		if _, ok := counts[tok]; !ok {
			order = append(order, tok)
		}
		counts[tok] += n
	}

	var prev byte
	for i := 0; i < len(calls); {
		c := upper(calls[i])
		switch {
		case c == '.' || c == ',':
			add(string(ref), 1)
			prev = ref
			i++
		case c == 'A' || c == 'C' || c == 'G' || c == 'T':
			add(string(c), 1)
			prev = c
			i++
		case c == '^':
			i += 2 // start of read, followed by its mapping quality
		case c == '+' || c == '-':
			j := i + 1
			n := 0
			for j < len(calls) && calls[j] >= '0' && calls[j] <= '9' {
				n = n*10 + int(calls[j]-'0')
				j++
			}
			end := min(j+n, len(calls))
			bases := strings.ToUpper(calls[j:end])
			i = end
			if prev == 0 {
				continue
			}
			tok := string(prev) + "[" + bases + "]"
			if c == '-' {
				tok = string(prev) + "(" + bases + ")"
			}
			add(tok, 1)
			if _, ok := counts[string(prev)]; ok {
				counts[string(prev)]--
			}
		default:
			if c != '$' {
				prev = c
			}
			i++
		}
	}

	out := make([]Call, len(order))
	for i, tok := range order {
		out[i] = Call{Token: tok, Count: counts[tok]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
