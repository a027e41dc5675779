package basecall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIUPAC(t *testing.T) {
	tests := []struct {
		b1, b2 byte
		want   byte
	}{
		{'A', 'G', 'R'},
		{'C', 'T', 'Y'},
		{'G', 'C', 'S'},
		{'A', 'T', 'W'},
		{'G', 'T', 'K'},
		{'A', 'C', 'M'},
		{'A', 'A', 'N'},
		{'A', 'N', 'N'},
		{'X', 'Y', 'N'},
		{'a', 'g', 'R'}, // case insensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.b1)+string(tt.b2), func(t *testing.T) {
			assert.Equal(t, tt.want, IUPAC(tt.b1, tt.b2))
		})
	}
}

func TestIUPACSymmetric(t *testing.T) {
	bases := []byte{'A', 'C', 'G', 'T', 'N', 'X'}
	for _, a := range bases {
		for _, b := range bases {
			assert.Equal(t, IUPAC(a, b), IUPAC(b, a), "iupac(%c,%c)", a, b)
		}
	}
}
