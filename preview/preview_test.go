package preview

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func twoRowImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	img.SetNRGBA(1, 1, color.NRGBA{0, 0, 255, 255})
	return img
}

func TestFit(t *testing.T) {
	tests := []struct {
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{2, 2, 10, 10, 10, 10},
		{4, 2, 10, 10, 10, 5},
		{2, 4, 10, 10, 5, 10},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := fit(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fit(%d,%d,%d,%d) = %dx%d, want %dx%d",
				tt.srcW, tt.srcH, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestDrawHalfBlocks(t *testing.T) {
	screen := newScreen(t, 10, 5)
	Draw(screen, twoRowImage())

	red := tcell.NewRGBColor(255, 0, 0)
	blue := tcell.NewRGBColor(0, 0, 255)

	mainc, _, style, _ := screen.GetContent(0, 0)
	if mainc != halfBlock {
		t.Fatalf("cell (0,0) rune = %q, want %q", mainc, halfBlock)
	}
	if fg, bg, _ := style.Decompose(); fg != red || bg != red {
		t.Errorf("cell (0,0) fg/bg = %v/%v, want red/red", fg, bg)
	}

	_, _, style, _ = screen.GetContent(9, 4)
	if fg, _, _ := style.Decompose(); fg != blue {
		t.Errorf("cell (9,4) fg = %v, want blue", fg)
	}
}

func TestDrawEmptyImage(t *testing.T) {
	screen := newScreen(t, 4, 4)
	Draw(screen, image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	if mainc, _, _, _ := screen.GetContent(0, 0); mainc == halfBlock {
		t.Error("empty image drew cells")
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
	} {
		screen := newScreen(t, 6, 3)
		if err := screen.PostEvent(ev); err != nil {
			t.Fatalf("PostEvent() error = %v", err)
		}
		Run(screen, twoRowImage())
		if mainc, _, _, _ := screen.GetContent(0, 0); mainc != halfBlock {
			t.Errorf("Run did not draw before returning")
		}
	}
}
