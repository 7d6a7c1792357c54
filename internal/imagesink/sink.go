// Package imagesink persists finished rasters as image files.
package imagesink

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for file extensions with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Sink stores an encoded image under a name.
type Sink interface {
	Save(name string, img image.Image) error
}

// Encoder writes img to w in one file format.
type Encoder func(w io.Writer, img image.Image) error

var encoders = map[string]Encoder{
	".png":  png.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
	".bmp":  bmp.Encode,
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// EncoderFor returns the encoder for a file name's extension.
func EncoderFor(name string) (Encoder, error) {
	ext := strings.ToLower(filepath.Ext(name))
	enc, ok := encoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return enc, nil
}

// FileSink writes images into Dir. Names without an extension get DefaultExt.
type FileSink struct {
	Dir        string
	DefaultExt string // ".png" when empty
}

var _ Sink = FileSink{}

// Path returns the file path Save would write name to.
func (s FileSink) Path(name string) string {
	if filepath.Ext(name) == "" {
		ext := s.DefaultExt
		if ext == "" {
			ext = ".png"
		}
		name += ext
	}
	if s.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Save encodes img into a file named name. The file is written to a
// temporary name first and renamed into place, so readers never see a
// partial image.
func (s FileSink) Save(name string, img image.Image) (err error) {
	path := s.Path(name)
	enc, err := EncoderFor(path)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err := f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", f.Name(), err)
	}
	if err := enc(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
