package shopsheet

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

// MaxImageHeight is the pixel height cap applied before embedding. Taller
// images are scaled down preserving aspect ratio; width is never capped on
// its own.
const MaxImageHeight = 300

// jpegQuality is the fixed encoding quality for embedded photos.
const jpegQuality = 90

// StagedImage is a normalized photo serialized to a transient file, ready to
// be embedded. Callers must Release it on every exit path, success or not.
type StagedImage struct {
	Path   string
	Width  int
	Height int

	released bool
}

// Bytes reads the staged JPEG back from disk.
func (s *StagedImage) Bytes() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &IOError{Path: s.Path, Op: "open", Err: err}
	}
	return data, nil
}

// Release removes the transient file. Safe to call more than once.
func (s *StagedImage) Release() {
	if s.released {
		return
	}
	s.released = true
	os.Remove(s.Path)
}

// NormalizeImage decodes an arbitrary raster image, flattens any alpha
// channel, scales it down to MaxImageHeight when needed, and serializes it as
// JPEG into a transient file.
//
// Alpha is discarded rather than composited against a background; JPEG has no
// alpha channel to carry it.
func NormalizeImage(r io.Reader) (*StagedImage, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, &DecodeError{Err: fmt.Errorf("invalid dimensions %dx%d", width, height)}
	}

	if height > MaxImageHeight {
		width = width * MaxImageHeight / height
		height = MaxImageHeight
	}

	// Drawing with the Src operator copies pixels without compositing, so a
	// transparent source just loses its alpha here.
	flat := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(flat, flat.Bounds(), src, bounds, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	tmp, err := os.CreateTemp("", "shopsheet-photo-*.jpg")
	if err != nil {
		return nil, &IOError{Path: "temp image", Op: "create", Err: err}
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, &IOError{Path: tmp.Name(), Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, &IOError{Path: tmp.Name(), Op: "save", Err: err}
	}

	return &StagedImage{Path: tmp.Name(), Width: width, Height: height}, nil
}
