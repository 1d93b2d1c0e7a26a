package gemini

import (
	"encoding/json"

	"google.golang.org/genai"

	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// ToolCall is one function call requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Usage is the token accounting for a single model call.
type Usage struct {
	PromptTokens   int
	ResponseTokens int
	TotalTokens    int
}

// Result is the normalized outcome of a model call: the concatenated text,
// any requested tool calls in order, and how the call terminated.
type Result struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
	BlockReason  string
	Usage        Usage
}

// Blocked reports whether the prompt was refused by the model's own safety
// layer before producing a candidate.
func (r *Result) Blocked() bool {
	return r.BlockReason != ""
}

// normalize flattens a raw API response into a Result. Text parts are
// concatenated, function-call parts are collected in order, and
// string-encoded argument values that hold JSON are decoded.
func (c *Client) normalize(resp *genai.GenerateContentResponse) (*Result, error) {
	res := &Result{}

	if resp.UsageMetadata != nil {
		res.Usage = Usage{
			PromptTokens:   int(resp.UsageMetadata.PromptTokenCount),
			ResponseTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:    int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		res.BlockReason = string(resp.PromptFeedback.BlockReason)
		c.log.Warn("Model refused prompt",
			logger.StringField("block_reason", res.BlockReason),
		)
		return res, nil
	}

	if len(resp.Candidates) == 0 {
		c.log.Warn("Model returned no candidates")
		return res, nil
	}

	cand := resp.Candidates[0]
	res.FinishReason = string(cand.FinishReason)
	if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != "" {
		c.log.Warn("Model call finished abnormally",
			logger.StringField("finish_reason", res.FinishReason),
		)
	}

	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.Text != "" {
				res.Text += part.Text
			}
			if part.FunctionCall != nil {
				res.ToolCalls = append(res.ToolCalls, ToolCall{
					Name: part.FunctionCall.Name,
					Args: decodeStringArgs(part.FunctionCall.Args),
				})
			}
		}
	}

	return res, nil
}

// decodeStringArgs works around the model occasionally returning nested
// structures as JSON-encoded strings instead of objects or arrays.
func decodeStringArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		s, ok := v.(string)
		if !ok || len(s) == 0 || (s[0] != '{' && s[0] != '[') {
			out[k] = v
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			out[k] = v
			continue
		}
		out[k] = decoded
	}
	return out
}
