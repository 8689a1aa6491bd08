package rearranger

import (
	"cmp"
	"slices"
)

// Rec. 709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// StructEntry is one pixel of the structural image in brightness order.
type StructEntry struct {
	Brightness float64
	Offset     int // byte offset of the pixel in the structural buffer
}

// ColorEntry is one pixel of the colour map in brightness order. The
// channels are copied so matching never goes back to the buffer.
type ColorEntry struct {
	Brightness float64
	Offset     int
	R, G, B, A uint8
}

// Luma returns the perceptual brightness of an RGB triple in [0,255].
func Luma(r, g, b uint8) float64 {
	return lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
}

// RankStructure orders the n pixels of buf by ascending brightness.
// Pixels of equal brightness keep their scan order.
func RankStructure(buf []uint8, n int) ([]StructEntry, error) {
	if err := checkShape("structural", buf, n); err != nil {
		return nil, err
	}
	ranked := make([]StructEntry, n)
	for i := range n {
		off := i * 4
		ranked[i] = StructEntry{
			Brightness: Luma(buf[off], buf[off+1], buf[off+2]),
			Offset:     off,
		}
	}
	slices.SortStableFunc(ranked, func(a, b StructEntry) int {
		return cmp.Compare(a.Brightness, b.Brightness)
	})
	return ranked, nil
}

// RankColors orders the n pixels of buf by ascending brightness and carries
// each pixel's RGBA along with it.
func RankColors(buf []uint8, n int) ([]ColorEntry, error) {
	if err := checkShape("color map", buf, n); err != nil {
		return nil, err
	}
	ranked := make([]ColorEntry, n)
	for i := range n {
		off := i * 4
		r, g, b, a := buf[off], buf[off+1], buf[off+2], buf[off+3]
		ranked[i] = ColorEntry{
			Brightness: Luma(r, g, b),
			Offset:     off,
			R:          r,
			G:          g,
			B:          b,
			A:          a,
		}
	}
	slices.SortStableFunc(ranked, func(a, b ColorEntry) int {
		return cmp.Compare(a.Brightness, b.Brightness)
	})
	return ranked, nil
}
