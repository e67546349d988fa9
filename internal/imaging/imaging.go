// Package imaging normalises hive photos before they reach the object store:
// the format is sniffed from the bytes, large images are downscaled and
// everything is re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 1600
	DefaultMaxBytes     = 10 << 20
	DefaultMaxPixels    = 40_000_000
	jpegQuality         = 85
	ContentTypeJPEG     = "image/jpeg"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image exceeds the upload size limit")
)

type codec struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

var codecs = map[string]codec{
	"image/jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"image/png":  {png.Decode, png.DecodeConfig},
	"image/webp": {webp.Decode, webp.DecodeConfig},
}

// Options bound the accepted input. Zero values fall back to the defaults.
// MaxPixels caps the decoded width*height, which a small compressed file can
// blow up far beyond MaxBytes.
type Options struct {
	MaxBytes     int64
	MaxDimension int
	MaxPixels    int64
}

// Photo is a normalised JPEG.
type Photo struct {
	Data          []byte
	Width, Height int
	ContentType   string
}

// Normalize reads at most opts.MaxBytes from r and returns a JPEG no larger
// than opts.MaxDimension on either side. Images whose header declares more than
// opts.MaxPixels are rejected with ErrTooLarge before any pixel is decoded.
func Normalize(r io.Reader, opts Options) (*Photo, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, ErrTooLarge
	}

	mime := http.DetectContentType(data)
	c, ok := codecs[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
	cfg, err := c.config(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s header: %v", ErrUnsupportedFormat, mime, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d is over %d pixels", ErrTooLarge, cfg.Width, cfg.Height, opts.MaxPixels)
	}
	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrUnsupportedFormat, mime, err)
	}

	img = fit(img, opts.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy(), ContentType: ContentTypeJPEG}, nil
}

// fit scales img down, keeping its aspect ratio, so that neither side exceeds limit.
func fit(img image.Image, limit int) image.Image {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w <= limit && h <= limit {
		return img
	}

	nw, nh := limit, h*limit/w
	if h > w {
		nw, nh = w*limit/h, limit
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}
