package rearranger

import (
	"image/color"
	"testing"
)

// identityRank ranks structural pixels in scan order without sorting.
func identityRank(n int) []StructEntry {
	out := make([]StructEntry, n)
	for i := range out {
		out[i] = StructEntry{Offset: i * 4}
	}
	return out
}

func TestMatchWindowClamping(t *testing.T) {
	structural := grayBuffer(0, 100, 200)
	colors := []ColorEntry{
		{R: 200, G: 200, B: 200, A: 1},
		{R: 0, G: 0, B: 0, A: 2},
		{R: 100, G: 100, B: 100, A: 3},
	}
	// N=3 is smaller than 2*radius; every rank sees the whole sequence.
	got := Match(structural, identityRank(3), colors, 10)
	want := []color.NRGBA{
		{0, 0, 0, 2},
		{100, 100, 100, 3},
		{200, 200, 200, 1},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMatchUpperBoundExclusive(t *testing.T) {
	// rank 0 with radius 1 searches [0, 1) only, so the exact match at
	// rank 1 is out of reach.
	structural := grayBuffer(50, 50)
	colors := []ColorEntry{
		{R: 0, G: 0, B: 0, A: 1},
		{R: 50, G: 50, B: 50, A: 2},
	}
	got := Match(structural, identityRank(2), colors, 1)
	if got[0] != (color.NRGBA{0, 0, 0, 1}) {
		t.Errorf("rank 0 = %v, want rank 0 colour", got[0])
	}
	if got[1] != (color.NRGBA{50, 50, 50, 2}) {
		t.Errorf("rank 1 = %v, want rank 1 colour", got[1])
	}
}

func TestMatchFirstMinimumWins(t *testing.T) {
	structural := grayBuffer(100, 100, 100)
	colors := []ColorEntry{
		{R: 90, G: 100, B: 100, A: 1},
		{R: 110, G: 100, B: 100, A: 2},
		{R: 100, G: 90, B: 100, A: 3},
	}
	got := Match(structural, identityRank(3), colors, 5)
	for i, c := range got {
		if c.A != 1 {
			t.Errorf("rank %d picked alpha %d, want the first equidistant candidate (alpha 1)", i, c.A)
		}
	}
}

func TestMatchAlphaFromMap(t *testing.T) {
	structural := []uint8{10, 20, 30, 255}
	colors := []ColorEntry{{R: 10, G: 20, B: 30, A: 7}}
	got := Match(structural, identityRank(1), colors, 3)
	if got[0] != (color.NRGBA{10, 20, 30, 7}) {
		t.Errorf("got %v, want map alpha 7", got[0])
	}
}

func TestMatchAlphaExcludedFromDistance(t *testing.T) {
	structural := []uint8{10, 10, 10, 255, 10, 10, 10, 255}
	colors := []ColorEntry{
		{R: 11, G: 10, B: 10, A: 255},
		{R: 10, G: 10, B: 10, A: 0},
	}
	got := Match(structural, identityRank(2), colors, 2)
	if got[1].A != 0 {
		t.Errorf("rank 1 = %v, want exact RGB match despite alpha 0", got[1])
	}
}

func TestMatchRadiusZeroFallsBackToRank(t *testing.T) {
	structural := grayBuffer(0, 0, 0)
	colors := []ColorEntry{
		{R: 255, A: 1},
		{G: 255, A: 2},
		{A: 3},
	}
	got := Match(structural, identityRank(3), colors, 0)
	for i, c := range got {
		if int(c.A) != i+1 {
			t.Errorf("rank %d = %v, want colour rank %d", i, c, i)
		}
	}
}

func TestCompositeCoversEveryPixel(t *testing.T) {
	const n = 64
	buf := make([]uint8, 4*n)
	for i := range n {
		v := uint8((i * 37) % 251)
		buf[i*4], buf[i*4+1], buf[i*4+2], buf[i*4+3] = v, v/2, v/3, 255
	}
	ranked, err := RankStructure(buf, n)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[int]bool, n)
	for _, e := range ranked {
		if e.Offset%4 != 0 || e.Offset < 0 || e.Offset >= 4*n {
			t.Fatalf("offset %d out of range", e.Offset)
		}
		if seen[e.Offset] {
			t.Fatalf("offset %d ranked twice", e.Offset)
		}
		seen[e.Offset] = true
	}

	matches := make([]color.NRGBA, n)
	for rank := range matches {
		matches[rank] = color.NRGBA{R: uint8(rank), A: 1}
	}
	dst := make([]uint8, 4*n)
	for i := range dst {
		dst[i] = 0xEE
	}
	Composite(dst, ranked, matches)

	written := make(map[uint8]bool, n)
	for i := range n {
		if dst[i*4+3] != 1 {
			t.Fatalf("pixel %d not written", i)
		}
		written[dst[i*4]] = true
	}
	if len(written) != n {
		t.Errorf("%d distinct ranks written, want %d", len(written), n)
	}
}
