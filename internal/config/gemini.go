package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// GeminiConfig holds Google Gemini-specific configuration
type GeminiConfig struct {
	APIKey      string `env:"GEMINI_API_KEY" yaml:"-"`
	Model       string `env:"GEMINI_MODEL" yaml:"model" default:"gemini-2.5-flash"`
	VisionModel string `env:"GEMINI_VISION_MODEL" yaml:"vision_model" default:"gemini-2.5-flash"`

	// Sampling parameters applied to every conversational call
	Temperature     float64 `env:"GEMINI_TEMPERATURE" yaml:"temperature" default:"0.7"`
	TopP            float64 `env:"GEMINI_TOP_P" yaml:"top_p" default:"0.95"`
	TopK            float64 `env:"GEMINI_TOP_K" yaml:"top_k" default:"40"`
	MaxOutputTokens int     `env:"GEMINI_MAX_OUTPUT_TOKENS" yaml:"max_output_tokens" default:"2048"`
}

// Validate checks GeminiConfig for sane sampling parameters
func (g GeminiConfig) Validate() error {
	var result error

	if g.Model == "" {
		result = multierror.Append(result, fmt.Errorf("gemini model is required"))
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		result = multierror.Append(result, fmt.Errorf("gemini temperature must be between 0 and 2, got %g", g.Temperature))
	}
	if g.TopP <= 0 || g.TopP > 1 {
		result = multierror.Append(result, fmt.Errorf("gemini top_p must be in (0, 1], got %g", g.TopP))
	}
	if g.MaxOutputTokens < 1 {
		result = multierror.Append(result, fmt.Errorf("gemini max_output_tokens must be positive, got %d", g.MaxOutputTokens))
	}

	return result
}
