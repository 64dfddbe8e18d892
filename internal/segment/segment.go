// Package segment removes image backgrounds through an external matting
// service. The service is optional; when it is disabled or unreachable the
// pipeline records the failure and continues with the unmodified image.
package segment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"amberpipe/internal/config"
)

// ErrUnavailable marks failures where the service could not produce a matte
// at all, as opposed to a malformed request.
var ErrUnavailable = errors.New("segmentation service unavailable")

// Segmenter produces a background-free variant of an image.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*image.NRGBA, error)
}

type segmentRequest struct {
	ImageData string `json:"image_data"`
}

type segmentResponse struct {
	Success   bool   `json:"success"`
	ImageData string `json:"image_data"`
	Message   string `json:"message"`
}

// HTTPSegmenter talks to a matting service over its JSON API.
type HTTPSegmenter struct {
	endpoint string
	client   *http.Client
}

// NewHTTP builds a segmenter from configuration. A disabled configuration
// yields a segmenter whose calls always report ErrUnavailable.
func NewHTTP(cfg config.Segmenter) Segmenter {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return disabled{}
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSegmenter{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// Segment sends the image as base64 PNG and decodes the matted result.
func (s *HTTPSegmenter) Segment(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode segmentation request: %w", err)
	}

	payload, err := json.Marshal(segmentRequest{
		ImageData: base64.StdEncoding.EncodeToString(encoded.Bytes()),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal segmentation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/segment", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build segmentation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: service returned %s", ErrUnavailable, resp.Status)
	}

	var result segmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode segmentation response: %w", err)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "no reason given"
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	raw, err := base64.StdEncoding.DecodeString(result.ImageData)
	if err != nil {
		return nil, fmt.Errorf("decode segmentation payload: %w", err)
	}
	matted, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode segmented image: %w", err)
	}
	return imaging.Clone(matted), nil
}

type disabled struct{}

func (disabled) Segment(context.Context, image.Image) (*image.NRGBA, error) {
	return nil, fmt.Errorf("%w: segmenter disabled", ErrUnavailable)
}
