package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MinLODSize is the smallest edge length a LOD level may shrink to.
const MinLODSize = 32

// Resize scales an image to the exact target size with Lanczos resampling.
func Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// ResizeSquare center-crops to a square and scales it to target edge length.
func ResizeSquare(img image.Image, target int) *image.NRGBA {
	bounds := img.Bounds()
	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	cropped := imaging.CropCenter(img, side, side)
	return imaging.Resize(cropped, target, target, imaging.Lanczos)
}

// Sharpen applies edge enhancement.
func Sharpen(img image.Image) *image.NRGBA {
	return imaging.Sharpen(img, 2.0)
}

// Grayscale converts to a luminance-only image (still NRGBA-backed).
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// AdjustBrightnessContrast applies both adjustments; percentages range
// -100..100 and zero is a no-op for that axis.
func AdjustBrightnessContrast(img image.Image, brightness, contrast float64) *image.NRGBA {
	out := imaging.AdjustBrightness(img, brightness)
	return imaging.AdjustContrast(out, contrast)
}

// Invert negates the color channels, leaving alpha alone.
func Invert(img image.Image) *image.NRGBA {
	return imaging.Invert(img)
}

// AlignBottom moves the opaque content to the bottom center of the canvas.
// Fully transparent images are returned unchanged.
func AlignBottom(img *image.NRGBA, padding int) *image.NRGBA {
	bbox, ok := AlphaBounds(img)
	if !ok {
		return img
	}
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	content := imaging.Crop(img, bbox)
	offsetX := (width - bbox.Dx()) / 2
	offsetY := height - bbox.Dy() - padding

	canvas := imaging.New(width, height, color.NRGBA{})
	return imaging.Paste(canvas, content, image.Pt(offsetX, offsetY))
}

// Shadow composites a semi-transparent elliptical contact shadow beneath the
// opaque content. Fully transparent images are returned unchanged.
func Shadow(img *image.NRGBA, shadowColor color.NRGBA, size int) *image.NRGBA {
	bbox, ok := AlphaBounds(img)
	if !ok {
		return img
	}
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	shadowX := (bbox.Min.X+bbox.Max.X)/2 - size/2
	shadowY := bbox.Max.Y - size/4

	shadow := imaging.New(width, height, color.NRGBA{})
	fillEllipse(shadow, image.Rect(shadowX, shadowY, shadowX+size, shadowY+size/2), shadowColor)

	return imaging.Overlay(shadow, img, image.Point{}, 1.0)
}

// MakeSeamless blends the image edges so the texture tiles without visible
// seams: a one-pixel mirrored border is added, blurred, and cropped away.
func MakeSeamless(img *image.NRGBA) *image.NRGBA {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	extended := imaging.New(width+2, height+2, color.NRGBA{})
	extended = imaging.Paste(extended, img, image.Pt(1, 1))

	top := imaging.Crop(img, image.Rect(0, 0, width, 1))
	bottom := imaging.Crop(img, image.Rect(0, height-1, width, height))
	left := imaging.Crop(img, image.Rect(0, 0, 1, height))
	right := imaging.Crop(img, image.Rect(width-1, 0, width, height))

	extended = imaging.Paste(extended, imaging.FlipV(top), image.Pt(1, 0))
	extended = imaging.Paste(extended, imaging.FlipV(bottom), image.Pt(1, height+1))
	extended = imaging.Paste(extended, imaging.FlipH(left), image.Pt(0, 1))
	extended = imaging.Paste(extended, imaging.FlipH(right), image.Pt(width+1, 1))

	corners := []struct {
		src image.Rectangle
		dst image.Point
	}{
		{image.Rect(0, 0, 1, 1), image.Pt(0, 0)},
		{image.Rect(width-1, 0, width, 1), image.Pt(width+1, 0)},
		{image.Rect(0, height-1, 1, height), image.Pt(0, height+1)},
		{image.Rect(width-1, height-1, width, height), image.Pt(width+1, height+1)},
	}
	for _, corner := range corners {
		extended = imaging.Paste(extended, imaging.Rotate180(imaging.Crop(img, corner.src)), corner.dst)
	}

	blurred := imaging.Blur(extended, 1.0)
	return imaging.Crop(blurred, image.Rect(1, 1, width+1, height+1))
}

// LODLevels returns the image followed by successively halved variants,
// never shrinking an edge below MinLODSize. Level 0 is the input itself.
func LODLevels(img image.Image, levels int) []*image.NRGBA {
	lods := make([]*image.NRGBA, 0, levels)
	lods = append(lods, imaging.Clone(img))

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	for i := 1; i < levels; i++ {
		width = maxInt(MinLODSize, width/2)
		height = maxInt(MinLODSize, height/2)
		lods = append(lods, imaging.Resize(img, width, height, imaging.Lanczos))
	}
	return lods
}

// CollisionBounds returns the bounding rectangle of the opaque content, or
// the full image bounds when no opaque pixel exists.
func CollisionBounds(img *image.NRGBA) image.Rectangle {
	if bbox, ok := AlphaBounds(img); ok {
		return bbox
	}
	return img.Bounds()
}

// AlphaBounds scans the alpha channel for the bounding box of non-transparent
// pixels. The second return is false when the image is fully transparent.
func AlphaBounds(img *image.NRGBA) (image.Rectangle, bool) {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y
	found := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		rowStart := img.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			alpha := img.Pix[rowStart+(x-bounds.Min.X)*4+3]
			if alpha == 0 {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x >= maxX {
				maxX = x + 1
			}
			if y >= maxY {
				maxY = y + 1
			}
		}
	}
	if !found {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}

func fillEllipse(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	rx := float64(rect.Dx()) / 2
	ry := float64(rect.Dy()) / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	cx := float64(rect.Min.X) + rx
	cy := float64(rect.Min.Y) + ry

	clipped := rect.Intersect(img.Bounds())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1.0 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
