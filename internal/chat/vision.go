package chat

import (
	"context"
	"fmt"

	"github.com/lewisedginton/cooking_assistant/internal/imagestore"
	"github.com/lewisedginton/cooking_assistant/internal/models/gemini"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// maxImageBytes caps uploads at 8 MiB.
const maxImageBytes = 8 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

const defaultImageQuestion = "What dish or ingredient is in this photo? " +
	"Describe its state (doneness, freshness, texture) and give one practical cooking tip for it."

// VisionInvoker is the image-capable model call the analyzer depends on.
type VisionInvoker interface {
	AnalyzeImage(ctx context.Context, prompt string, mimeType string, data []byte) (*gemini.Result, error)
}

// ImageAnalysis is the outcome of one image turn.
type ImageAnalysis struct {
	Description string `json:"description"`
	ImageKey    string `json:"image_key,omitempty"`
}

// Analyzer answers questions about uploaded food photos and keeps a copy of
// each image for later reference.
type Analyzer struct {
	model  VisionInvoker
	images *imagestore.Store
	log    logger.Logger
}

// NewAnalyzer creates an image analyzer. images may be nil when no storage
// backend is configured; analysis then works without retention.
func NewAnalyzer(model VisionInvoker, images *imagestore.Store, log logger.Logger) *Analyzer {
	return &Analyzer{model: model, images: images, log: log}
}

// Analyze describes the uploaded image, answering question when one was
// asked. Retention failures are logged but never fail the analysis.
func (a *Analyzer) Analyze(ctx context.Context, question, mimeType string, data []byte) (*ImageAnalysis, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes", len(data))
	}
	if !allowedImageTypes[mimeType] {
		return nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}

	var key string
	if a.images != nil {
		saved, err := a.images.SaveImage(ctx, data, mimeType)
		if err != nil {
			a.log.Warn("Failed to retain uploaded image",
				logger.ErrorField(err),
			)
		} else {
			key = saved
		}
	}

	prompt := question
	if prompt == "" {
		prompt = defaultImageQuestion
	}

	res, err := a.model.AnalyzeImage(ctx, prompt, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}
	if res.Blocked() || res.Text == "" {
		return nil, fmt.Errorf("model produced no description")
	}

	return &ImageAnalysis{Description: res.Text, ImageKey: key}, nil
}
