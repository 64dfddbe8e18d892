package normalmap

import (
	"image"
	"image/color"
	"testing"
)

func flatImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestSynthesizeFlatInput(t *testing.T) {
	for _, strength := range []float64{0.5, 1.0, 5.0} {
		img := flatImage(16, 16, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
		out := Synthesize(img, Options{Strength: strength})

		want := color.NRGBA{R: 128, G: 128, B: 255, A: 255}
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if got := out.NRGBAAt(x, y); got != want {
					t.Fatalf("strength %v pixel (%d,%d) = %v, want %v", strength, x, y, got, want)
				}
			}
		}
	}
}

func TestSynthesizeGradientTilts(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(x * 16)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	out := Synthesize(img, Options{Strength: 1.0})

	// Brightness rises toward +x, so interior normals lean toward -x.
	px := out.NRGBAAt(8, 8)
	if px.R >= 128 {
		t.Fatalf("expected x component below 128 on rising slope, got %d", px.R)
	}
	if px.B <= 128 {
		t.Fatalf("expected positive z component, got %d", px.B)
	}

	// Borders have no gradient estimate and stay flat-up.
	if got := out.NRGBAAt(0, 8); got != (color.NRGBA{R: 128, G: 128, B: 255, A: 255}) {
		t.Fatalf("border pixel = %v, want flat-up encoding", got)
	}
}

func TestSynthesizeThresholdSuppressesNoise(t *testing.T) {
	img := flatImage(16, 16, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	// One slightly brighter pixel produces small gradients around it.
	img.SetNRGBA(8, 8, color.NRGBA{R: 104, G: 104, B: 104, A: 255})

	out := Synthesize(img, Options{Strength: 1.0, GradientThreshold: 0.5})
	want := color.NRGBA{R: 128, G: 128, B: 255, A: 255}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := out.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v after thresholding", x, y, got, want)
			}
		}
	}
}

func TestSynthesizeOutputSizeMatchesInput(t *testing.T) {
	img := flatImage(20, 12, color.NRGBA{A: 255})
	out := Synthesize(img, Options{Strength: 1.0, Smooth: true, BlurRadius: 0.5})
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 12 {
		t.Fatalf("output bounds = %v, want 20x12", out.Bounds())
	}
}
