package rearranger

import "image/color"

// Composite writes matches[rank] into dst at the original offset of the
// structural pixel holding that rank. Structural offsets form a permutation
// of the pixel grid, so every pixel of dst is written exactly once.
func Composite(dst []uint8, structRank []StructEntry, matches []color.NRGBA) {
	for rank, c := range matches {
		off := structRank[rank].Offset
		dst[off] = c.R
		dst[off+1] = c.G
		dst[off+2] = c.B
		dst[off+3] = c.A
	}
}
