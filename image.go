package rearranger

import (
	"image"

	"golang.org/x/image/draw"
)

// PixelBuffer returns the non-premultiplied RGBA pixels of img as a tightly
// packed buffer of length 4*Dx*Dy, row-major from the top-left corner.
func PixelBuffer(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if n, ok := img.(*image.NRGBA); ok && n.Stride == 4*w {
		start := n.PixOffset(b.Min.X, b.Min.Y)
		return append([]uint8(nil), n.Pix[start:start+4*w*h]...)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix
}

// BufferImage wraps buf as a w×h image without copying.
func BufferImage(buf []uint8, w, h int) (*image.NRGBA, error) {
	n, err := pixelCount(w, h)
	if err != nil {
		return nil, err
	}
	if err := checkShape("image", buf, n); err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    buf,
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}
