package align

import "fmt"

// Flag bit indices; bit i carries value 2^i.
const (
	BitPaired = iota
	BitProperPair
	BitUnmapped
	BitMateUnmapped
	BitReverse
	BitMateReverse
	BitRead1
	BitRead2
	BitSecondary
	BitQCFail
	BitDuplicate
	BitSupplementary
)

// FlagBits is a SAM flag expanded into its twelve bits.
type FlagBits [12]bool

// DecodeFlag expands flag into a fixed-width binary string and reads it
// back-to-front, so that index i holds bit 2^i.
func DecodeFlag(flag uint16) FlagBits {
	s := fmt.Sprintf("%012b", flag&0xfff)
	var b FlagBits
	for i := range b {
		b[i] = s[len(s)-1-i] == '1'
	}
	return b
}

// Int reassembles the flag value.
func (b FlagBits) Int() uint16 {
	var v uint16
	for i, set := range b {
		if set {
			v += 1 << i
		}
	}
	return v
}
