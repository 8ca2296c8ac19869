package graph

import (
	"math"
	"strconv"
	"strings"
)

// Depth bounds a tree walk. Non-negative values are a level limit; Unbounded
// removes the limit.
type Depth int

const (
	// Unbounded lets a walk follow dependencies to any distance.
	Unbounded Depth = -1

	// DefaultDepth is used when no usable depth is supplied.
	DefaultDepth Depth = 2

	// UnboundedToken is the request value that selects Unbounded.
	UnboundedToken = "all"
)

// ParseDepth parses a request depth. UnboundedToken selects Unbounded, a
// non-negative integer is taken as is, and anything else falls back to
// DefaultDepth.
func ParseDepth(s string) Depth {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, UnboundedToken) {
		return Unbounded
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return DefaultDepth
	}
	return Depth(n)
}

// DepthFrom converts a decoded JSON value (number, string or null) into a
// Depth, following the same fallback rules as ParseDepth.
func DepthFrom(v any) Depth {
	switch d := v.(type) {
	case string:
		return ParseDepth(d)
	case float64:
		if d < 0 || d != math.Trunc(d) || d > math.MaxInt32 {
			return DefaultDepth
		}
		return Depth(d)
	case int:
		if d < 0 {
			return DefaultDepth
		}
		return Depth(d)
	default:
		return DefaultDepth
	}
}

// Allows reports whether a node at level may be emitted.
func (d Depth) Allows(level int) bool {
	return d == Unbounded || level <= int(d)
}

// Expands reports whether the dependencies of a node at level are followed.
func (d Depth) Expands(level int) bool {
	return d == Unbounded || level < int(d)
}

// String returns UnboundedToken for Unbounded and the decimal level otherwise.
func (d Depth) String() string {
	if d == Unbounded {
		return UnboundedToken
	}
	return strconv.Itoa(int(d))
}
