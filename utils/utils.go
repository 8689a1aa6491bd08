package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/rearranger"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // decoder registration
)

// Canvas describes the square surface both inputs are drawn onto before a
// transfer.
type Canvas struct {
	// Edge length in pixels. 0 keeps the color map's own size and stretches
	// the structural image to it.
	Size int
	// Fill drawn behind the image, visible through transparent pixels.
	Background color.Color
}

// DefaultBackground is the slate fill drawn behind each input.
var DefaultBackground = color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}

func DefaultCanvas() Canvas {
	return Canvas{Size: 500, Background: DefaultBackground}
}

// Pair holds two equally sized rasterised inputs.
type Pair struct {
	Structure *image.NRGBA
	ColorMap  *image.NRGBA
}

func (p Pair) Width() int  { return p.Structure.Bounds().Dx() }
func (p Pair) Height() int { return p.Structure.Bounds().Dy() }

// LoadPair decodes both images and rasterises them onto the same canvas.
// It fails if either image can't be read, so a returned Pair is always
// complete.
func LoadPair(structurePath, colorMapPath string, c Canvas) (Pair, error) {
	structure, err := ReadImage(structurePath)
	if err != nil {
		return Pair{}, err
	}
	colorMap, err := ReadImage(colorMapPath)
	if err != nil {
		return Pair{}, err
	}

	w, h := c.Size, c.Size
	if c.Size <= 0 {
		size := colorMap.Bounds().Size()
		w, h = size.X, size.Y
	}
	bg := c.Background
	if bg == nil {
		bg = DefaultBackground
	}

	rearranger.Logger().Info("loaded inputs",
		"structure", structurePath, "structure_size", structure.Bounds().Size(),
		"color_map", colorMapPath, "color_map_size", colorMap.Bounds().Size(),
		"canvas", image.Pt(w, h))

	return Pair{
		Structure: Rasterize(structure, w, h, bg),
		ColorMap:  Rasterize(colorMap, w, h, bg),
	}, nil
}

// Rasterize fills a w×h canvas with bg and draws img stretched over it.
func Rasterize(img image.Image, w, h int, bg color.Color) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// ParseHexColor parses "#rrggbb" (or "#rgb") into an opaque color.
func ParseHexColor(hex string) (color.NRGBA, error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img in the format named by filename's extension.
func SaveImage(img image.Image, filename string) (err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var encode func(*os.File) error
	switch ext {
	case ".png", "":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 95}) }
	case ".gif":
		encode = func(f *os.File) error { return gif.Encode(f, img, nil) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, img) }
	case ".tif", ".tiff":
		encode = func(f *os.File) error { return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}) }
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := encode(f); err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return nil
}
