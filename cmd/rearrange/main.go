package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/setanarut/rearranger"
	"github.com/setanarut/rearranger/preview"
	"github.com/setanarut/rearranger/utils"
)

type job struct {
	structure string
	colorMap  string
	output    string
}

func main() {
	var j job
	var configPath, background, palettePath string
	var radius, size int
	var report, showPreview, watch, verbose bool

	flag.StringVar(&j.structure, "s", "", "Structural source image")
	flag.StringVar(&j.structure, "source", "", "Structural source image")
	flag.StringVar(&j.colorMap, "m", "", "Color map image")
	flag.StringVar(&j.colorMap, "map", "", "Color map image")
	flag.StringVar(&j.output, "o", "", "Output image (.png, .jpg, .gif, .bmp, .tiff)")
	flag.StringVar(&j.output, "output", "", "Output image (.png, .jpg, .gif, .bmp, .tiff)")
	flag.StringVar(&configPath, "config", "rearrange.toml", "Path to config file (TOML)")
	flag.IntVar(&radius, "r", rearranger.DefaultWindowRadius, "Window radius in ranks")
	flag.IntVar(&size, "size", 500, "Canvas edge in pixels, 0 keeps the color map's size")
	flag.StringVar(&background, "bg", "#1f2937", "Canvas background color")
	flag.StringVar(&palettePath, "palette", "", "Write a palette swatch of the result to this path")
	flag.BoolVar(&report, "report", false, "Print transfer statistics")
	flag.BoolVar(&showPreview, "preview", false, "Show the result in the terminal")
	flag.BoolVar(&watch, "watch", false, "Re-run whenever either input changes")
	flag.BoolVar(&verbose, "v", false, "Debug logging to stderr")
	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.Transfer.WindowRadius = radius
		case "size":
			cfg.Canvas.Size = size
		case "bg":
			cfg.Canvas.Background = background
		case "palette":
			cfg.Output.Palette = palettePath
		case "report":
			cfg.Output.Report = report
		case "v":
			if verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := parseLogLevel(cfg.LogLevel)
	rearranger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if j.structure == "" || j.colorMap == "" || j.output == "" {
		fmt.Fprintln(os.Stderr, "Usage: rearrange -s <source> -m <map> -o <output> [-r 10] [-size 500] [-palette p.png] [-report] [-preview] [--config rearrange.toml]")
		fmt.Fprintln(os.Stderr, "       rearrange -s <source> -m <map> -o <output> --watch")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if watch {
		if err := runWatchMode(j, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Rearranging pixels...")
	start := time.Now()
	result, err := process(j, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote '%s' in %.2fs\n", j.output, time.Since(start).Seconds())

	if showPreview {
		if err := preview.Show(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// process runs one transfer from files to files and returns the result.
func process(j job, cfg *Config) (image.Image, error) {
	pair, err := utils.LoadPair(j.structure, j.colorMap, cfg.canvas())
	if err != nil {
		return nil, err
	}
	w, h := pair.Width(), pair.Height()

	buf, err := rearranger.Transform(pair.Structure.Pix, pair.ColorMap.Pix, w, h, cfg.Transfer.WindowRadius)
	if err != nil {
		return nil, err
	}
	result, err := rearranger.BufferImage(buf, w, h)
	if err != nil {
		return nil, err
	}
	if err := utils.SaveImage(result, j.output); err != nil {
		return nil, err
	}

	if cfg.Output.Palette != "" {
		method, err := utils.ParsePaletteMethod(cfg.Output.PaletteMethod)
		if err != nil {
			return nil, err
		}
		palette := utils.ExtractPalette(result, cfg.Output.PaletteColors, method)
		utils.SortPaletteByBrightness(palette)
		if err := utils.SavePalette(palette, 64, cfg.Output.Palette); err != nil {
			return nil, fmt.Errorf("writing palette: %w", err)
		}
		fmt.Printf("Palette (%s, %d colors) -> '%s'\n", method, len(palette), filepath.Base(cfg.Output.Palette))
	}

	if cfg.Output.Report {
		rep, err := rearranger.Analyze(pair.Structure.Pix, pair.ColorMap.Pix, buf)
		if err != nil {
			return nil, err
		}
		fmt.Print(rep)
	}
	return result, nil
}
