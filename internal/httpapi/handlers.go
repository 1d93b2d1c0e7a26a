package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/lewisedginton/cooking_assistant/internal/chat"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler holds the endpoint implementations.
type Handler struct {
	pipeline  *chat.Pipeline
	analyzer  *chat.Analyzer
	extractor *chat.Extractor
	maxUpload int64
	log       logger.Logger
}

// NewHandler creates the API handler set. analyzer and extractor may be nil
// when their dependencies are not configured; their endpoints then return
// 503.
func NewHandler(pipeline *chat.Pipeline, analyzer *chat.Analyzer, extractor *chat.Extractor, maxUpload int64, log logger.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		pipeline:  pipeline,
		analyzer:  analyzer,
		extractor: extractor,
		maxUpload: maxUpload,
		log:       log,
	}
}

type chatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	Actions   any    `json:"actions,omitempty"`
	Nutrition any    `json:"nutrition,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.writeError(w, http.StatusBadRequest, "text is required", "")
		return
	}
	if req.UserID == "" {
		req.UserID = "guest"
	}

	resp, err := h.pipeline.Handle(r.Context(), chat.Request{
		UserID:  req.UserID,
		Message: req.Text,
	})
	if err != nil {
		h.log.Error("Turn handling failed", logger.ErrorField(err))
		h.writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	if resp.Rejected {
		h.writeError(w, http.StatusUnprocessableEntity, resp.Reply, resp.Reason)
		return
	}

	h.writeJSON(w, http.StatusOK, chatResponse{
		Reply:     resp.Reply,
		Actions:   orNil(resp.Actions),
		Nutrition: orNilPtr(resp.Nutrition),
	})
}

// AnalyzeImage handles POST /api/analyze-image as multipart form data with
// an "image" file and an optional "question" field.
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		h.writeError(w, http.StatusServiceUnavailable, "image analysis not configured", "")
		return
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeError(w, http.StatusBadRequest, "expected multipart form with an image", "")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "image file is required", "")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read image", "")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	analysis, err := h.analyzer.Analyze(r.Context(), r.FormValue("question"), mimeType, data)
	if err != nil {
		h.log.Warn("Image analysis failed", logger.ErrorField(err))
		h.writeError(w, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}

	h.writeJSON(w, http.StatusOK, analysis)
}

type extractRequest struct {
	UserID string `json:"user_id"`
	URL    string `json:"url"`
}

// ExtractRecipe handles POST /api/extract-recipe.
func (h *Handler) ExtractRecipe(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		h.writeError(w, http.StatusServiceUnavailable, "recipe extraction not configured", "")
		return
	}

	var req extractRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.writeError(w, http.StatusBadRequest, "url is required", "")
		return
	}
	if req.UserID == "" {
		req.UserID = "guest"
	}

	result, err := h.extractor.Extract(r.Context(), req.UserID, req.URL)
	if err != nil {
		h.log.Warn("Recipe extraction failed",
			logger.StringField("url", req.URL),
			logger.ErrorField(err),
		)
		h.writeError(w, http.StatusUnprocessableEntity, err.Error(), "")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", logger.ErrorField(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, reason string) {
	h.writeJSON(w, status, errorResponse{Error: message, Reason: reason})
}

func orNil[T any](s []T) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

func orNilPtr[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}
