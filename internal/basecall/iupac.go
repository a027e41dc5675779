package basecall

// pairKey encodes an unordered base pair so lookups are symmetric.
type pairKey struct {
	lo, hi byte
}

func newPairKey(a, b byte) pairKey {
	a, b = upper(a), upper(b)
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// iupacCodes maps the six canonical two-base mixtures to their ambiguity
// symbol. Any other pair resolves to 'N'.
var iupacCodes = map[pairKey]byte{
	newPairKey('A', 'G'): 'R',
	newPairKey('C', 'T'): 'Y',
	newPairKey('G', 'C'): 'S',
	newPairKey('A', 'T'): 'W',
	newPairKey('G', 'T'): 'K',
	newPairKey('A', 'C'): 'M',
}

// IUPAC returns the ambiguity code for a two-base mixture. Pairs outside the
// six canonical sets, including pairs with non-ACGT symbols, map to 'N'.
func IUPAC(b1, b2 byte) byte {
	if code, ok := iupacCodes[newPairKey(b1, b2)]; ok {
		return code
	}
	return 'N'
}
