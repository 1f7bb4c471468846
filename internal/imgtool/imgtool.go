// Package imgtool wraps the imaging library with the small set of transforms
// the img command exposes: resize, grayscale and named filters.
package imgtool

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Info describes a loaded image.
type Info struct {
	// Width and Height are the pixel dimensions.
	Width  int
	Height int
	// Format is the detected encoding (png, jpeg, ...).
	Format string
}

// Load decodes the image at path, using any registered decoder.
func Load(path string) (image.Image, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decoding %q: %w", path, err)
	}

	bounds := img.Bounds()

	return img, Info{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// Resize scales img to width x height using Lanczos resampling.
func Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Grayscale converts img to grayscale.
func Grayscale(img image.Image) image.Image {
	return imaging.Grayscale(img)
}

// ApplyFilter applies a named filter. Unknown names are a no-op passthrough.
func ApplyFilter(img image.Image, name string) image.Image {
	switch name {
	case "blur":
		return imaging.Blur(img, 1.5)
	case "sharpen":
		return imaging.Sharpen(img, 1.0)
	default:
		return img
	}
}

// Processor saves transformed images into a dedicated output directory,
// created on first use.
type Processor struct {
	outputDir string
}

// NewProcessor creates a Processor writing into outputDir.
func NewProcessor(outputDir string) *Processor {
	return &Processor{outputDir: outputDir}
}

// Save encodes img into the output directory under name. The encoding is
// chosen from the name's extension.
func (p *Processor) Save(img image.Image, name string) (string, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %q: %w", p.outputDir, err)
	}

	out := filepath.Join(p.outputDir, name)

	if err := imaging.Save(img, out); err != nil {
		return "", fmt.Errorf("saving %q: %w", out, err)
	}

	return out, nil
}
