package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lewisedginton/cooking_assistant/internal/models/gemini"
	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// maxPageBytes caps how much of a recipe page is read.
const maxPageBytes = 512 << 10

// JSONModel is the structured model call the extractor depends on.
type JSONModel interface {
	GenerateJSON(ctx context.Context, prompt string) (*gemini.Result, error)
}

// ExtractResult is a recipe pulled out of a web page. Saved reports whether
// it was written to the user's collection. Raw carries the model output
// when it could not be parsed into a recipe.
type ExtractResult struct {
	Recipe store.Recipe `json:"recipe"`
	Saved  bool         `json:"saved"`
	Raw    string       `json:"raw,omitempty"`
}

// Extractor turns recipe web pages into structured saved recipes.
type Extractor struct {
	model  JSONModel
	router *store.Router
	client *http.Client
	log    logger.Logger
}

// NewExtractor creates an extractor. client may be nil to use a default
// with a 15 second timeout.
func NewExtractor(model JSONModel, router *store.Router, client *http.Client, log logger.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Extractor{model: model, router: router, client: client, log: log}
}

// Extract fetches the page at url, asks the model for the recipe it
// contains and saves it to the user's collection.
func (e *Extractor) Extract(ctx context.Context, userID, url string) (*ExtractResult, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported url: %s", url)
	}

	page, err := e.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	res, err := e.model.GenerateJSON(ctx, extractionPrompt(page))
	if err != nil {
		return nil, fmt.Errorf("recipe extraction failed: %w", err)
	}

	recipe, raw, err := parseExtractedRecipe(res.Text)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		e.log.Warn("Unparseable extraction result, returning raw text",
			logger.UserIDField(userID),
			logger.StringField("url", url),
		)
		return &ExtractResult{Recipe: store.Recipe{Title: "unknown", Source: url}, Raw: raw}, nil
	}
	recipe.Source = url
	recipe.CreatedAt = time.Now()

	result := &ExtractResult{Recipe: *recipe}
	if err := e.router.For(userID).SaveRecipe(ctx, userID, *recipe); err != nil {
		e.log.Error("Failed to save extracted recipe",
			logger.UserIDField(userID),
			logger.StringField("title", recipe.Title),
			logger.ErrorField(err),
		)
	} else {
		result.Saved = true
	}
	return result, nil
}

func (e *Extractor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("bad url: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recipe page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recipe page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read recipe page: %w", err)
	}

	text := stripHTML(string(body))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("recipe page had no readable text")
	}
	return text, nil
}

func extractionPrompt(page string) string {
	return fmt.Sprintf(`Extract the recipe from the web page text below.
Respond with ONLY a JSON object with fields:
  "title" (string), "ingredients" (array of strings), "steps" (array of
  strings), "tags" (array of strings), "difficulty" (string),
  "prep_minutes" (number), "cook_minutes" (number), "servings" (number).
If the page does not contain a recipe, respond with {"title": ""}.

Page text:
%s`, page)
}

type extractedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty"`
	PrepMinutes int      `json:"prep_minutes"`
	CookMinutes int      `json:"cook_minutes"`
	Servings    int      `json:"servings"`
}

// parseExtractedRecipe returns (nil, raw, nil) when the model output is not
// valid JSON, so callers can degrade instead of failing the request.
func parseExtractedRecipe(raw string) (*store.Recipe, string, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var ext extractedRecipe
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &ext); err != nil {
		return nil, raw, nil
	}
	if ext.Title == "" || len(ext.Ingredients) == 0 || len(ext.Steps) == 0 {
		return nil, "", fmt.Errorf("page does not contain a usable recipe")
	}

	return &store.Recipe{
		Title: ext.Title,
		Detail: store.RecipeDetail{
			Ingredients: ext.Ingredients,
			Steps:       ext.Steps,
		},
		Tags:        ext.Tags,
		Difficulty:  ext.Difficulty,
		PrepMinutes: ext.PrepMinutes,
		CookMinutes: ext.CookMinutes,
		Servings:    ext.Servings,
	}, "", nil
}

// stripHTML drops script and style blocks, then all tags, leaving the
// page text for the extraction prompt.
func stripHTML(html string) string {
	html = dropBlock(html, "<script", "</script>")
	html = dropBlock(html, "<style", "</style>")

	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func dropBlock(s, openTag, closeTag string) string {
	for {
		lower := strings.ToLower(s)
		start := strings.Index(lower, openTag)
		if start < 0 {
			return s
		}
		end := strings.Index(lower[start:], closeTag)
		if end < 0 {
			return s[:start]
		}
		s = s[:start] + s[start+end+len(closeTag):]
	}
}
