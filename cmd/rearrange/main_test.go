package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/rearranger/utils"
)

func gradient(w, h int, tint color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8((x + y) * 255 / (w + h - 2))
			img.SetNRGBA(x, y, color.NRGBA{R: v & tint.R, G: v & tint.G, B: v & tint.B, A: 255})
		}
	}
	return img
}

func TestProcessWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	j := job{
		structure: filepath.Join(dir, "structure.png"),
		colorMap:  filepath.Join(dir, "map.png"),
		output:    filepath.Join(dir, "out", "result.png"),
	}
	if err := utils.SaveImage(gradient(12, 9, color.NRGBA{255, 255, 255, 255}), j.structure); err != nil {
		t.Fatal(err)
	}
	if err := utils.SaveImage(gradient(7, 7, color.NRGBA{255, 128, 0, 255}), j.colorMap); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Canvas.Size = 16
	cfg.Output.Palette = filepath.Join(dir, "palette.png")
	cfg.Output.PaletteColors = 3
	cfg.Output.Report = true

	result, err := process(j, cfg)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if result.Bounds().Size() != image.Pt(16, 16) {
		t.Errorf("result size = %v, want 16x16", result.Bounds().Size())
	}
	if _, err := os.Stat(j.output); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if _, err := os.Stat(cfg.Output.Palette); err != nil {
		t.Errorf("palette not written: %v", err)
	}

	saved, err := utils.ReadImage(j.output)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Bounds().Size() != image.Pt(16, 16) {
		t.Errorf("saved size = %v, want 16x16", saved.Bounds().Size())
	}
}

func TestProcessMissingInput(t *testing.T) {
	dir := t.TempDir()
	j := job{
		structure: filepath.Join(dir, "structure.png"),
		colorMap:  filepath.Join(dir, "missing.png"),
		output:    filepath.Join(dir, "result.png"),
	}
	if err := utils.SaveImage(gradient(4, 4, color.NRGBA{255, 255, 255, 255}), j.structure); err != nil {
		t.Fatal(err)
	}
	if _, err := process(j, defaultConfig()); err == nil {
		t.Fatal("process() error = nil with a missing color map")
	}
	if _, err := os.Stat(j.output); !os.IsNotExist(err) {
		t.Error("output written although an input was missing")
	}
}
