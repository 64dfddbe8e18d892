package raster

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Load decodes an image file into an NRGBA buffer.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", filepath.Base(path), err)
	}
	return imaging.Clone(img), nil
}

// Save encodes an image to path, choosing the format from the extension.
// JPEG output is flattened onto a white matte since it has no alpha channel.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		matte := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		flattened := imaging.Overlay(matte, img, image.Point{}, 1.0)
		if err := imaging.Save(flattened, path, imaging.JPEGQuality(95)); err != nil {
			return fmt.Errorf("save image %s: %w", filepath.Base(path), err)
		}
	default:
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("save image %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
