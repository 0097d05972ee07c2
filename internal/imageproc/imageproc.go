// Package imageproc prepares uploaded images for the vision model and for
// storage: decode, bound the longest side, flatten transparency onto white,
// and re-encode as JPEG.
package imageproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"math"

	_ "golang.org/x/image/bmp" // Register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MIMEType is the content type of every processed image.
const MIMEType = "image/jpeg"

// maxPixels rejects decompression bombs before the full decode.
const maxPixels = 64 << 20

var (
	// ErrEmpty is returned for a zero-length upload.
	ErrEmpty = errors.New("empty image")
	// ErrDecode is returned when the bytes are not a supported image.
	ErrDecode = errors.New("unsupported or corrupt image")
	// ErrTooLarge is returned when the declared pixel count is unreasonable.
	ErrTooLarge = errors.New("image dimensions too large")
)

// Options controls processing.
type Options struct {
	MaxDimension int // longest side after scaling
	Quality      int // JPEG quality 1..100
}

// DefaultOptions matches the service defaults.
var DefaultOptions = Options{MaxDimension: 800, Quality: 85}

// Result is a processed image.
type Result struct {
	JPEG   []byte
	Width  int
	Height int
	Format string // source format as reported by image.Decode
}

// Base64 returns the standard base64 encoding of the JPEG bytes.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.JPEG)
}

// Process decodes data, scales it so neither side exceeds opts.MaxDimension
// (never upscaling), composites it over white, and encodes it as JPEG.
func Process(data []byte, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultOptions.MaxDimension
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = DefaultOptions.Quality
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: zero dimension", ErrDecode)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, ErrTooLarge
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxDimension)
	dst := flattenAndScale(src, w, h)

	out, err := encodeJPEG(dst, opts.Quality)
	if err != nil {
		return nil, err
	}
	return &Result{JPEG: out, Width: w, Height: h, Format: format}, nil
}

// fitWithin returns the largest size with the same aspect ratio whose longest
// side is at most limit. Sizes already within the limit are unchanged.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	scale := float64(limit) / float64(w)
	if s := float64(limit) / float64(h); s < scale {
		scale = s
	}
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

func flattenAndScale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	bounds := src.Bounds()
	if bounds.Dx() == w && bounds.Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
