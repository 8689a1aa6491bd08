package rearranger

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report summarises how a transfer changed the structural image.
type Report struct {
	Pixels int

	SourceLuma float64 // mean brightness of the structural image
	MapLuma    float64
	ResultLuma float64

	ResultLumaStdDev float64
	ResultLumaMin    float64
	ResultLumaMax    float64

	// Pearson correlation of per-pixel brightness between the structural
	// image and the result. NaN when either is uniformly bright.
	LumaCorrelation float64

	// Mean squared RGB distance between each structural pixel and the
	// colour it received.
	MeanSquaredError float64
}

// Analyze computes a Report for a finished transfer. All three buffers must
// have the same length, a multiple of 4.
func Analyze(structural, colorMap, result []uint8) (Report, error) {
	n := len(structural) / 4
	if err := checkShape("structural", structural, n); err != nil {
		return Report{}, err
	}
	if err := checkShape("color map", colorMap, n); err != nil {
		return Report{}, err
	}
	if err := checkShape("result", result, n); err != nil {
		return Report{}, err
	}
	if n == 0 {
		return Report{}, nil
	}

	src := lumaSlice(structural, n)
	cmap := lumaSlice(colorMap, n)
	res := lumaSlice(result, n)

	sq := make([]float64, n)
	for i := range n {
		off := i * 4
		dr := float64(structural[off]) - float64(result[off])
		dg := float64(structural[off+1]) - float64(result[off+1])
		db := float64(structural[off+2]) - float64(result[off+2])
		sq[i] = dr*dr + dg*dg + db*db
	}

	rep := Report{
		Pixels:           n,
		SourceLuma:       stat.Mean(src, nil),
		MapLuma:          stat.Mean(cmap, nil),
		ResultLuma:       stat.Mean(res, nil),
		ResultLumaMin:    floats.Min(res),
		ResultLumaMax:    floats.Max(res),
		MeanSquaredError: floats.Sum(sq) / float64(n),
	}
	if n > 1 {
		rep.ResultLumaStdDev = stat.StdDev(res, nil)
		rep.LumaCorrelation = correlation(src, res)
	} else {
		rep.LumaCorrelation = math.NaN()
	}
	return rep, nil
}

func correlation(x, y []float64) float64 {
	if floats.Min(x) == floats.Max(x) || floats.Min(y) == floats.Max(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func lumaSlice(buf []uint8, n int) []float64 {
	out := make([]float64, n)
	for i := range n {
		off := i * 4
		out[i] = Luma(buf[off], buf[off+1], buf[off+2])
	}
	return out
}

func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pixels:            %d\n", r.Pixels)
	fmt.Fprintf(&sb, "mean luma:         source %.2f, map %.2f, result %.2f\n", r.SourceLuma, r.MapLuma, r.ResultLuma)
	fmt.Fprintf(&sb, "result luma:       stddev %.2f, range [%.2f, %.2f]\n", r.ResultLumaStdDev, r.ResultLumaMin, r.ResultLumaMax)
	if math.IsNaN(r.LumaCorrelation) {
		sb.WriteString("luma correlation:  n/a\n")
	} else {
		fmt.Fprintf(&sb, "luma correlation:  %.4f\n", r.LumaCorrelation)
	}
	fmt.Fprintf(&sb, "mean squared diff: %.2f\n", r.MeanSquaredError)
	return sb.String()
}
