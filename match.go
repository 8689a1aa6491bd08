package rearranger

import (
	"image/color"
	"math"
)

// Match picks a map colour for every structural rank. For rank i the colour
// ranks in [i-radius, i+radius) are searched, clamped to the sequence, for
// the entry closest in RGB to the structural pixel's own colour. The first
// minimum in ascending rank order wins. An empty interval falls back to the
// colour at rank i.
//
// Match does not validate its inputs; both sequences must have the same
// length and every structural offset must lie inside structural.
func Match(structural []uint8, structRank []StructEntry, colorRank []ColorEntry, radius int) []color.NRGBA {
	n := len(structRank)
	out := make([]color.NRGBA, n)
	for rank := range n {
		off := structRank[rank].Offset
		tr := int(structural[off])
		tg := int(structural[off+1])
		tb := int(structural[off+2])

		best := rank
		bestD := math.MaxInt
		start := max(0, rank-radius)
		end := min(n, rank+radius)
		for search := start; search < end; search++ {
			c := &colorRank[search]
			dr := tr - int(c.R)
			dg := tg - int(c.G)
			db := tb - int(c.B)
			d := dr*dr + dg*dg + db*db
			if d < bestD {
				bestD = d
				best = search
			}
		}

		c := colorRank[best]
		out[rank] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return out
}
