package segment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"

	"amberpipe/internal/config"
)

func testSprite() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	return img
}

func TestHTTPSegmenterRoundTrip(t *testing.T) {
	sprite := testSprite()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/segment" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req segmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if _, err := imaging.Decode(bytes.NewReader(raw)); err != nil {
			t.Errorf("payload is not a decodable image: %v", err)
		}

		var out bytes.Buffer
		if err := imaging.Encode(&out, sprite, imaging.PNG); err != nil {
			t.Errorf("encode response: %v", err)
		}
		json.NewEncoder(w).Encode(segmentResponse{
			Success:   true,
			ImageData: base64.StdEncoding.EncodeToString(out.Bytes()),
		})
	}))
	defer server.Close()

	seg := NewHTTP(config.Segmenter{Enabled: true, Endpoint: server.URL, TimeoutSeconds: 5})
	got, err := seg.Segment(context.Background(), testSprite())
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if got.Bounds().Dx() != 8 || got.Bounds().Dy() != 8 {
		t.Fatalf("result bounds = %v, want 8x8", got.Bounds())
	}
}

func TestHTTPSegmenterServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(segmentResponse{Success: false, Message: "model not loaded"})
	}))
	defer server.Close()

	seg := NewHTTP(config.Segmenter{Enabled: true, Endpoint: server.URL, TimeoutSeconds: 5})
	_, err := seg.Segment(context.Background(), testSprite())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestHTTPSegmenterUnreachable(t *testing.T) {
	seg := NewHTTP(config.Segmenter{Enabled: true, Endpoint: "http://127.0.0.1:1", TimeoutSeconds: 1})
	_, err := seg.Segment(context.Background(), testSprite())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestDisabledSegmenter(t *testing.T) {
	seg := NewHTTP(config.Segmenter{Enabled: false})
	_, err := seg.Segment(context.Background(), testSprite())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}
