// Package rearranger implements colour similarity transfer: the pixels of a
// structural image keep their positions while their colours are taken from
// a colour map image, matched by brightness rank and a windowed
// nearest-colour search.
package rearranger

import (
	"fmt"
	"image"
	"image/color"
	"time"
)

// DefaultWindowRadius is the number of colour ranks searched on each side
// of a structural rank.
const DefaultWindowRadius = 10

type Options struct {
	// Rank distance searched around each structural rank in the colour map.
	// 0 turns the transfer into a plain rank-for-rank swap.
	// Larger values favour colour accuracy over brightness accuracy; the
	// cost grows linearly with the radius.
	// Ideal start: 5-20.
	WindowRadius int
}

func DefaultOptions() Options {
	return Options{
		WindowRadius: DefaultWindowRadius,
	}
}

// Rearranger holds one transfer. Stage outputs are exported so callers can
// inspect the rankings after Build.
type Rearranger struct {
	Structure  []uint8
	ColorMap   []uint8
	W, H       int
	StructRank []StructEntry
	ColorRank  []ColorEntry
	Matches    []color.NRGBA
	Result     []uint8
}

func NewRearranger(structural, colorMap []uint8, w, h int) *Rearranger {
	return &Rearranger{
		Structure: structural,
		ColorMap:  colorMap,
		W:         w,
		H:         h,
	}
}

// Build ranks both buffers, matches colours and composites the result.
// On error no stage output is kept.
func (r *Rearranger) Build(opt Options) error {
	if opt.WindowRadius < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindowRadius, opt.WindowRadius)
	}
	n, err := pixelCount(r.W, r.H)
	if err != nil {
		return err
	}
	if err := checkShape("structural", r.Structure, n); err != nil {
		return err
	}
	if err := checkShape("color map", r.ColorMap, n); err != nil {
		return err
	}

	log := Logger().With("width", r.W, "height", r.H)

	start := time.Now()
	structRank, err := RankStructure(r.Structure, n)
	if err != nil {
		return err
	}
	colorRank, err := RankColors(r.ColorMap, n)
	if err != nil {
		return err
	}
	log.Debug("ranked buffers", "pixels", n, "elapsed", time.Since(start))

	start = time.Now()
	matches := Match(r.Structure, structRank, colorRank, opt.WindowRadius)
	log.Debug("matched colours", "radius", opt.WindowRadius, "elapsed", time.Since(start))

	start = time.Now()
	result := make([]uint8, 4*n)
	Composite(result, structRank, matches)
	log.Debug("composited result", "elapsed", time.Since(start))

	r.StructRank = structRank
	r.ColorRank = colorRank
	r.Matches = matches
	r.Result = result
	return nil
}

// Transform returns a new buffer holding structural's layout recoloured from
// colorMap. Both buffers must hold exactly width*height RGBA pixels.
func Transform(structural, colorMap []uint8, width, height, windowRadius int) ([]uint8, error) {
	r := NewRearranger(structural, colorMap, width, height)
	if err := r.Build(Options{WindowRadius: windowRadius}); err != nil {
		return nil, err
	}
	return r.Result, nil
}

// TransformImage is Transform for decoded images. Both images must have the
// same size; the result uses structure's size with its origin at (0,0).
func TransformImage(structure, colorMap image.Image, opt Options) (*image.NRGBA, error) {
	sb, cb := structure.Bounds(), colorMap.Bounds()
	if sb.Size() != cb.Size() {
		return nil, fmt.Errorf("%w: structure is %v, color map is %v", ErrInvalidBufferShape, sb.Size(), cb.Size())
	}
	w, h := sb.Dx(), sb.Dy()
	r := NewRearranger(PixelBuffer(structure), PixelBuffer(colorMap), w, h)
	if err := r.Build(opt); err != nil {
		return nil, err
	}
	Logger().Info("transfer finished", "width", w, "height", h, "radius", opt.WindowRadius)
	return BufferImage(r.Result, w, h)
}
