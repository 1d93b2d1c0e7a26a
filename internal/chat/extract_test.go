package chat

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/cooking_assistant/internal/store"
)

const recipePage = `<html><head><title>Best Dal</title>
<style>body { color: red; }</style>
<script>trackPageView();</script>
</head><body>
<h1>Red Lentil Dal</h1>
<ul><li>200g red lentils</li><li>1 tsp turmeric</li></ul>
<ol><li>Rinse the lentils</li><li>Simmer with turmeric</li></ol>
</body></html>`

const recipeJSON = `{"title":"Red Lentil Dal",
"ingredients":["200g red lentils","1 tsp turmeric"],
"steps":["Rinse the lentils","Simmer with turmeric until soft"],
"tags":["indian","vegan"],"difficulty":"easy",
"prep_minutes":5,"cook_minutes":25,"servings":4}`

func newExtractFixture(t *testing.T, modelText string) (*Extractor, *store.MemoryStore, *fakeJSONModel) {
	t.Helper()
	ms := store.NewMemoryStore(20)
	router := store.NewRouter(nil, ms, testLogger())
	model := &fakeJSONModel{text: modelText}
	return NewExtractor(model, router, nil, testLogger()), ms, model
}

func TestExtractSavesRecipeFromPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(recipePage))
	}))
	defer srv.Close()

	e, ms, _ := newExtractFixture(t, recipeJSON)

	result, err := e.Extract(t.Context(), "guest", srv.URL)
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.Equal(t, "Red Lentil Dal", result.Recipe.Title)
	assert.Equal(t, srv.URL, result.Recipe.Source)
	assert.Equal(t, 25, result.Recipe.CookMinutes)

	recipes, err := ms.Recipes(t.Context(), "guest", 10)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Len(t, recipes[0].Detail.Ingredients, 2)
}

func TestExtractPromptStripsMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(recipePage))
	}))
	defer srv.Close()

	e, _, model := newExtractFixture(t, recipeJSON)
	_, err := e.Extract(t.Context(), "guest", srv.URL)
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Red Lentil Dal")
	assert.NotContains(t, model.prompts[0], "trackPageView")
	assert.NotContains(t, model.prompts[0], "<li>")
}

func TestExtractRejectsNonRecipePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>A blog post about knives.</body></html>"))
	}))
	defer srv.Close()

	e, ms, _ := newExtractFixture(t, `{"title":""}`)

	_, err := e.Extract(t.Context(), "guest", srv.URL)
	assert.Error(t, err)

	recipes, rerr := ms.Recipes(t.Context(), "guest", 10)
	require.NoError(t, rerr)
	assert.Empty(t, recipes)
}

func TestExtractRejectsBadStatusAndScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e, _, _ := newExtractFixture(t, recipeJSON)

	_, err := e.Extract(t.Context(), "guest", srv.URL)
	assert.Error(t, err)

	_, err = e.Extract(t.Context(), "guest", "ftp://example.com/recipe")
	assert.Error(t, err)
}

func TestExtractMalformedModelOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(recipePage))
	}))
	defer srv.Close()

	e, ms, _ := newExtractFixture(t, "sure, here is the recipe in prose form")

	result, err := e.Extract(t.Context(), "guest", srv.URL)
	require.NoError(t, err)
	assert.False(t, result.Saved)
	assert.Equal(t, "unknown", result.Recipe.Title)
	assert.Equal(t, "sure, here is the recipe in prose form", result.Raw)

	recipes, rerr := ms.Recipes(t.Context(), "guest", 10)
	require.NoError(t, rerr)
	assert.Empty(t, recipes)
}

func TestStripHTML(t *testing.T) {
	text := stripHTML(recipePage)

	assert.Contains(t, text, "Red Lentil Dal")
	assert.Contains(t, text, "Rinse the lentils")
	assert.NotContains(t, text, "trackPageView")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "<li>")
}
