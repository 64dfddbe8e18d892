package normalmap

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"amberpipe/internal/raster"
)

// epsilon floors the normalization divisor so near-flat pixels never divide
// by zero.
const epsilon = 1e-10

// Options controls normal-map synthesis.
type Options struct {
	// Strength scales the estimated gradients before normalization.
	Strength float64
	// BlurRadius applies a gaussian pre-blur to the height proxy to
	// suppress high-frequency noise. Zero disables it.
	BlurRadius float64
	// GradientThreshold zeroes gradient magnitudes below it so negligible
	// relief is not encoded.
	GradientThreshold float64
	// Smooth runs one box-smoothing pass over the component channels and
	// re-normalizes afterwards.
	Smooth bool
}

// Synthesize converts an image into a tangent-space normal map. Luminance is
// the height proxy; a perfectly flat input yields the flat-up encoding
// (128,128,255) everywhere, regardless of strength.
func Synthesize(img image.Image, opts Options) *image.NRGBA {
	strength := opts.Strength
	if strength <= 0 {
		strength = 1.0
	}

	gray := raster.Grayscale(img)
	if opts.BlurRadius > 0 {
		gray = imaging.Blur(gray, opts.BlurRadius)
	}

	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	heights := heightField(gray, width, height)

	gx, gy := sobel(heights, width, height)
	if opts.GradientThreshold > 0 {
		applyThreshold(gx, opts.GradientThreshold)
		applyThreshold(gy, opts.GradientThreshold)
	}

	nx := make([]float64, width*height)
	ny := make([]float64, width*height)
	nz := make([]float64, width*height)
	for i := range nx {
		nx[i] = -gx[i] * strength
		ny[i] = -gy[i] * strength
		nz[i] = 1.0
	}
	normalize(nx, ny, nz)

	if opts.Smooth {
		nx = boxSmooth(nx, width, height)
		ny = boxSmooth(ny, width, height)
		nz = boxSmooth(nz, width, height)
		// Smoothing denormalizes the vectors.
		normalize(nx, ny, nz)
	}

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			out.SetNRGBA(x, y, color.NRGBA{
				R: encodeComponent(nx[i]),
				G: encodeComponent(ny[i]),
				B: encodeComponent(nz[i]),
				A: 255,
			})
		}
	}
	return out
}

func heightField(gray *image.NRGBA, width, height int) []float64 {
	heights := make([]float64, width*height)
	bounds := gray.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Grayscale output has R == G == B.
			heights[y*width+x] = float64(gray.Pix[gray.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)]) / 255.0
		}
	}
	return heights
}

// sobel estimates horizontal and vertical gradients with the 3x3 kernel pair
// {-1 0 1; -2 0 2; -1 0 1} and its 90-degree rotation. Border pixels keep a
// zero gradient.
func sobel(heights []float64, width, height int) (gx, gy []float64) {
	gx = make([]float64, width*height)
	gy = make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			tl := heights[(y-1)*width+x-1]
			tc := heights[(y-1)*width+x]
			tr := heights[(y-1)*width+x+1]
			ml := heights[y*width+x-1]
			mr := heights[y*width+x+1]
			bl := heights[(y+1)*width+x-1]
			bc := heights[(y+1)*width+x]
			br := heights[(y+1)*width+x+1]

			i := y*width + x
			gx[i] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy[i] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return gx, gy
}

func applyThreshold(gradient []float64, threshold float64) {
	for i, g := range gradient {
		if math.Abs(g) < threshold {
			gradient[i] = 0
		}
	}
}

func normalize(nx, ny, nz []float64) {
	for i := range nx {
		norm := math.Sqrt(nx[i]*nx[i] + ny[i]*ny[i] + nz[i]*nz[i])
		if norm < epsilon {
			norm = epsilon
		}
		nx[i] /= norm
		ny[i] /= norm
		nz[i] /= norm
	}
}

func boxSmooth(values []float64, width, height int) []float64 {
	smoothed := make([]float64, len(values))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			var count int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sy < 0 || sx >= width || sy >= height {
						continue
					}
					sum += values[sy*width+sx]
					count++
				}
			}
			smoothed[y*width+x] = sum / float64(count)
		}
	}
	return smoothed
}

func encodeComponent(v float64) uint8 {
	encoded := math.Round((v + 1.0) * 0.5 * 255.0)
	if encoded < 0 {
		return 0
	}
	if encoded > 255 {
		return 255
	}
	return uint8(encoded)
}
