package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"no", false},
		{"off", false},
		{"25", 25},
		{"0", 0},
		{"-3", -3},
		{"4.5", 4.5},
		{"0.85", 0.85},
		{"max-window", "max-window"},
		{"", ""},
		{"4.5.6", "4.5.6"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceValue(tt.in), "input %q", tt.in)
	}
}
