package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDepth(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Depth
	}{
		{"0", 0},
		{"1", 1},
		{" 7 ", 7},
		{"all", Unbounded},
		{"ALL", Unbounded},
		{"", DefaultDepth},
		{"-1", DefaultDepth},
		{"two", DefaultDepth},
		{"1.5", DefaultDepth},
	} {
		assert.Equal(t, tc.want, ParseDepth(tc.in), "ParseDepth(%q)", tc.in)
	}
}

func TestDepthFrom(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   any
		want Depth
	}{
		{"Nil", nil, DefaultDepth},
		{"Number", float64(3), 3},
		{"Zero", float64(0), 0},
		{"Fraction", 1.5, DefaultDepth},
		{"Negative", float64(-2), DefaultDepth},
		{"String", "4", 4},
		{"Token", "all", Unbounded},
		{"Int", 5, 5},
		{"Bool", true, DefaultDepth},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DepthFrom(tc.in))
		})
	}
}

func TestDepthBounds(t *testing.T) {
	d := Depth(2)
	assert.True(t, d.Allows(2))
	assert.False(t, d.Allows(3))
	assert.True(t, d.Expands(1))
	assert.False(t, d.Expands(2))

	assert.True(t, Unbounded.Allows(1_000_000))
	assert.True(t, Unbounded.Expands(1_000_000))

	assert.True(t, Depth(0).Allows(0))
	assert.False(t, Depth(0).Expands(0))
}

func TestDepthString(t *testing.T) {
	assert.Equal(t, "all", Unbounded.String())
	assert.Equal(t, "3", Depth(3).String())
}
