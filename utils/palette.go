package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/rearranger"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
	// PaletteMethodUsage weights each distinct color by how many pixels
	// carry it. On a transfer result that is how often the map color was
	// chosen.
	PaletteMethodUsage
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	case PaletteMethodUsage:
		return "usage"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod accepts the names returned by PaletteMethod.String.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans", "k-means":
		return PaletteMethodKMeans, nil
	case "usage":
		return PaletteMethodUsage, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest using the
// same luma weights as the transfer ranking.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		ar, ag, ab := a.Clamped().RGB255()
		br, bg, bb := b.Clamped().RGB255()
		ya := rearranger.Luma(ar, ag, ab)
		yb := rearranger.Luma(br, bg, bb)
		if ya < yb {
			return -1
		}
		if ya > yb {
			return 1
		}
		return 0
	})
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		// Fully transparent inputs give no candidates.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return selectDiverseColors(weighted, k)
}

// selectDiverseColors picks up to k colors. The heaviest candidate goes
// first, then each round takes the candidate farthest in Lab from everything
// picked so far, with light candidates scaled down.
func selectDiverseColors(cands []weightedColor, k int) []colorful.Color {
	k = min(k, len(cands))
	if k <= 0 {
		return nil
	}

	maxW := 0.0
	for _, c := range cands {
		maxW = max(maxW, c.Weight)
	}
	bias := make([]float64, len(cands))
	for i, c := range cands {
		bias[i] = 0.55 + 0.45*math.Sqrt(max(c.Weight, 1e-6)/max(maxW, 1e-6))
	}

	// nearest[i] is the Lab distance from candidate i to its closest pick,
	// -1 once i has been picked.
	nearest := make([]float64, len(cands))
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}
	pick := func(i int) colorful.Color {
		nearest[i] = -1
		picked := cands[i].Col.Clamped()
		for j := range cands {
			if nearest[j] >= 0 {
				nearest[j] = min(nearest[j], cands[j].Col.Clamped().DistanceLab(picked))
			}
		}
		return picked
	}

	heaviest := 0
	for i, c := range cands {
		if c.Weight > cands[heaviest].Weight {
			heaviest = i
		}
	}
	out := make([]colorful.Color, 0, k)
	out = append(out, pick(heaviest))
	for len(out) < k {
		best, bestScore := -1, -1.0
		for i, d := range nearest {
			if d < 0 {
				continue
			}
			if score := d * bias[i]; score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		out = append(out, pick(best))
	}
	return out
}

// UsagePalette summarises a transfer result buffer. Every result pixel is a
// verbatim map color, so counting exact RGB values gives how many pixels
// each map color received; the k picks favour the most used ones. Fully
// transparent pixels are skipped.
func UsagePalette(buf []uint8, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	counts := make(map[[3]uint8]int)
	var order [][3]uint8
	for i := 0; i+3 < len(buf); i += 4 {
		if buf[i+3] == 0 {
			continue
		}
		key := [3]uint8{buf[i], buf[i+1], buf[i+2]}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(order))
	for _, key := range order {
		weighted = append(weighted, weightedColor{
			Col:    colorful.Color{R: float64(key[0]) / 255, G: float64(key[1]) / 255, B: float64(key[2]) / 255},
			Weight: float64(counts[key]),
		})
	}
	rearranger.Logger().Debug("usage palette", "distinct_colors", len(order), "k", k)
	return selectDiverseColors(weighted, k)
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		rearranger.Logger().Warn("kmeans partition failed", "k", workK, "err", err)
		return nil
	}

	// Most populated clusters first.
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: max(float64(len(c.Observations)), 1e-6)})
	}
	return selectDiverseColors(weighted, k)
}

func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodUsage:
		p := UsagePalette(rearranger.PixelBuffer(img), k)
		if len(p) != 0 {
			return p
		}
		return ExtractDominantPalette(img, k)
	case PaletteMethodKMeans:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		rearranger.Logger().Warn("kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

// PaletteImage renders palette as a row of tileSize×tileSize swatches.
func PaletteImage(palette []colorful.Color, tileSize int) (*image.NRGBA, error) {
	if len(palette) == 0 {
		return nil, errors.New("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		fill := color.NRGBA{R: r, G: g, B: b, A: 255}
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img, nil
}

func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	img, err := PaletteImage(palette, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}
