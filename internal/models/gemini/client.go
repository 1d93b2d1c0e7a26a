// Package gemini wraps the Gemini API for conversational turns with
// function calling, structured JSON calls and image analysis.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/cooking_assistant/internal/config"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// Client talks to the Gemini API using a shared configuration.
type Client struct {
	genai *genai.Client
	cfg   config.GeminiConfig
	log   logger.Logger
}

// NewClient creates a Gemini client backed by the Gemini API.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log logger.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{genai: gc, cfg: cfg, log: log}, nil
}

// Generate runs one conversational call with the full tool surface attached.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	gcfg := c.generationConfig()
	gcfg.Tools = toolDeclarations()

	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), gcfg)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	return c.normalize(resp)
}

// GenerateJSON runs a structured call that must return a single JSON object;
// no tools are attached. Used for nutrition estimation and recipe extraction.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (*Result, error) {
	gcfg := c.generationConfig()
	gcfg.ResponseMIMEType = "application/json"

	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), gcfg)
	if err != nil {
		return nil, fmt.Errorf("structured model call failed: %w", err)
	}
	return c.normalize(resp)
}

// AnalyzeImage sends image bytes alongside a prompt to the vision model.
func (c *Client) AnalyzeImage(ctx context.Context, prompt string, mimeType string, data []byte) (*Result, error) {
	gcfg := c.generationConfig()

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}

	model := c.cfg.VisionModel
	if model == "" {
		model = c.cfg.Model
	}

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, gcfg)
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}
	return c.normalize(resp)
}

func (c *Client) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Temperature)),
		TopP:            genai.Ptr(float32(c.cfg.TopP)),
		TopK:            genai.Ptr(float32(c.cfg.TopK)),
		MaxOutputTokens: int32(c.cfg.MaxOutputTokens),
		CandidateCount:  1,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
}
