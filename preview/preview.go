// Package preview shows an image in a terminal using half-block cells.
package preview

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/setanarut/rearranger"
)

const halfBlock = '▀'

// Draw renders img onto screen, scaled to fit while keeping its aspect
// ratio. Each cell shows two vertically stacked pixels: the upper one as the
// foreground of '▀' and the lower one as the background.
func Draw(screen tcell.Screen, img image.Image) {
	screen.Clear()
	cols, rows := screen.Size()
	b := img.Bounds()
	if cols <= 0 || rows <= 0 || b.Empty() {
		screen.Show()
		return
	}

	w, h := fit(b.Dx(), b.Dy(), cols, rows*2)
	for cy := range (h + 1) / 2 {
		for cx := range w {
			top := sample(img, cx, cy*2, w, h)
			style := tcell.StyleDefault.Foreground(top)
			if cy*2+1 < h {
				style = style.Background(sample(img, cx, cy*2+1, w, h))
			}
			screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	screen.Show()
}

// fit scales srcW×srcH down (or up) to the largest size inside maxW×maxH.
func fit(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW*maxH > maxW*srcH {
		return maxW, max(1, srcH*maxW/srcW)
	}
	return max(1, srcW*maxH/srcH), maxH
}

// sample returns the nearest source pixel for target pixel (x, y) of a
// w×h rendition of img.
func sample(img image.Image, x, y, w, h int) tcell.Color {
	b := img.Bounds()
	sx := b.Min.X + x*b.Dx()/w
	sy := b.Min.Y + y*b.Dy()/h
	r, g, bl, _ := img.At(sx, sy).RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(bl>>8))
}

// Run draws img on screen and redraws on resize until q, Esc or Ctrl-C.
// The caller owns screen initialisation and teardown.
func Run(screen tcell.Screen, img image.Image) {
	Draw(screen, img)
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
			Draw(screen, img)
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
				return
			}
		}
	}
}

// Show opens the terminal, runs the preview and restores the terminal.
func Show(img image.Image) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("preview: terminal init: %w", err)
	}
	defer screen.Fini()

	cols, rows := screen.Size()
	rearranger.Logger().Debug("preview opened", "cols", cols, "rows", rows, "image", img.Bounds().Size())
	Run(screen, img)
	return nil
}
