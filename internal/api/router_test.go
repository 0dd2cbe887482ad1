package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/api/handlers/conversation"
	recipeHandler "recipe-assistant/internal/api/handlers/recipe"
	"recipe-assistant/internal/api/handlers/webhook"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/extract"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
	common.InitNopLogger()
}

func testRecipes() []common.Recipe {
	titles := []string{"Куриный суп", "Грибной суп", "Гороховый суп", "Рыбный суп", "Сырный суп", "Томатный суп", "Овощной суп"}
	out := make([]common.Recipe, 0, len(titles)+1)
	for _, title := range titles {
		out = append(out, common.Recipe{Title: title, Ingredients: []string{"вода", "соль"}})
	}
	return append(out, common.Recipe{
		Title:       "Плов",
		Ingredients: []string{"рис", "морковь", "баранина"},
		Steps:       []string{"Обжарить мясо", "Добавить рис"},
	})
}

func newTestRouter(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	norm := nlp.NewNormalizer(nlp.IdentityLemmatizer{}, nil, nil)
	catalog := recipe.NewStaticCatalog(context.Background(), testRecipes(), norm)
	words := extract.NewDeterministic(norm, catalog, nil)
	ranker := search.NewLexical(cfg.Search, catalog)
	engine := dialog.NewEngine(cfg, dialog.Deps{
		Index:     catalog,
		Extractor: words,
		Ranker:    ranker,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	router, err := SetupRouter(ctx, cfg, &Services{
		Engine:    engine,
		Catalog:   catalog,
		Extractor: words,
		Words:     words,
		Ranker:    ranker,
	})
	require.NoError(t, err)
	return router, cfg
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSetupRouterRequiresServices(t *testing.T) {
	_, err := SetupRouter(context.Background(), config.Default(), &Services{})
	assert.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status string `json:"status"`
		Corpus struct {
			Recipes int `json:"recipes"`
		} `json:"corpus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 8, health.Corpus.Recipes)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/live", nil).Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDialogTurnAndReset(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/v1/dialog/turn", conversation.TurnRequest{Utterance: "найди суп"})
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[conversation.TurnResponse](t, w)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, dialog.KindList, first.Reply.Kind)
	assert.Equal(t, 7, first.Reply.Total)

	w = do(t, router, http.MethodPost, "/api/v1/dialog/turn", conversation.TurnRequest{SessionID: first.SessionID, Utterance: "7"})
	second := decode[conversation.TurnResponse](t, w)
	assert.Equal(t, dialog.KindDetail, second.Reply.Kind)
	require.NotNil(t, second.Reply.Recipe)
	assert.Equal(t, "Овощной суп", second.Reply.Recipe.Title)

	w = do(t, router, http.MethodGet, "/api/v1/dialog/"+first.SessionID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/dialog/"+first.SessionID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/dialog/"+first.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errResp := decode[common.ErrorResponse](t, w)
	assert.Equal(t, common.ErrCodeNotFound, errResp.Code)
}

func TestDialogTurnRejectsBadJSON(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dialog/turn", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decode[common.ErrorResponse](t, w).Code)
}

func TestRecipeSearch(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		name    string
		body    recipeHandler.SearchRequest
		status  int
		total   int
		page    int
		results int
	}{
		{"free text", recipeHandler.SearchRequest{Query: "суп"}, http.StatusOK, 7, 1, 5},
		{"second page", recipeHandler.SearchRequest{Query: "суп", Page: 2}, http.StatusOK, 7, 2, 2},
		{"explicit terms", recipeHandler.SearchRequest{DishTerms: []string{"плов"}, IngredientTerms: []string{"морковь"}}, http.StatusOK, 1, 1, 1},
		{"page past the end", recipeHandler.SearchRequest{Query: "суп", Page: 5}, http.StatusOK, 7, 5, 0},
		{"no input", recipeHandler.SearchRequest{}, http.StatusBadRequest, 0, 0, 0},
		{"negative page", recipeHandler.SearchRequest{Query: "суп", Page: -1}, http.StatusBadRequest, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/recipe/search", tt.body)
			require.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				return
			}
			resp := decode[recipeHandler.SearchResponse](t, w)
			assert.Equal(t, tt.total, resp.Total)
			assert.Equal(t, tt.page, resp.Page)
			assert.Len(t, resp.Results, tt.results)
		})
	}
}

func TestRecipeGet(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/recipe/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recipe common.Recipe `json:"recipe"`
		Text   string        `json:"text"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Плов", resp.Recipe.Title)
	assert.Contains(t, resp.Text, "  1. Обжарить мясо")

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/recipe/99", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/recipe/abc", nil).Code)
}

func webhookRequest(sessionID string, messageID int64, utterance string, isNew bool) map[string]any {
	return map[string]any{
		"request": map[string]any{
			"command":            utterance,
			"original_utterance": utterance,
			"type":               "SimpleUtterance",
		},
		"session": map[string]any{
			"message_id": messageID,
			"session_id": sessionID,
			"new":        isNew,
		},
		"version": "1.0",
	}
}

func TestWebhookConversation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/webhook", webhookRequest("w1", 0, "", true))
	require.Equal(t, http.StatusOK, w.Code)
	greeting := decode[webhook.Response](t, w)
	assert.Contains(t, greeting.Response.Text, "Привет")
	assert.Equal(t, "1.0", greeting.Version)

	w = do(t, router, http.MethodPost, "/webhook", webhookRequest("w1", 1, "найди суп", false))
	list := decode[webhook.Response](t, w)
	assert.Contains(t, list.Response.Text, "Страница 1 из 2")
	titles := make([]string, 0, len(list.Response.Buttons))
	for _, b := range list.Response.Buttons {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "Еще", "Другой рецепт"}, titles)

	w = do(t, router, http.MethodPost, "/webhook", webhookRequest("w1", 2, "пока", false))
	bye := decode[webhook.Response](t, w)
	assert.True(t, bye.Response.EndSession)
	assert.Empty(t, bye.Response.Buttons)
}

func TestWebhookNewSessionResetsState(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	do(t, router, http.MethodPost, "/webhook", webhookRequest("w2", 1, "найди суп", false))
	w := do(t, router, http.MethodPost, "/webhook", webhookRequest("w2", 0, "еще", true))
	resp := decode[webhook.Response](t, w)
	assert.Contains(t, resp.Response.Text, "Больше нет рецептов")
}

func TestWebhookRedeliveryIsReplayed(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	do(t, router, http.MethodPost, "/webhook", webhookRequest("w3", 1, "найди суп", false))
	first := do(t, router, http.MethodPost, "/webhook", webhookRequest("w3", 2, "еще", false))
	again := do(t, router, http.MethodPost, "/webhook", webhookRequest("w3", 2, "еще", false))

	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, first.Body.String(), again.Body.String())
	assert.Contains(t, again.Body.String(), "Страница 2 из 2")
}

func TestWebhookUtteranceLimitIsSeparateFromReplyLimit(t *testing.T) {
	long := "найди " + strings.Repeat("очень ", 30) + "суп"

	t.Run("long utterance survives a short reply limit", func(t *testing.T) {
		router, _ := newTestRouter(t, func(cfg *config.Config) { cfg.Webhook.MaxTextLength = 128 })
		w := do(t, router, http.MethodPost, "/webhook", webhookRequest("u1", 1, long, false))
		resp := decode[webhook.Response](t, w)
		assert.Contains(t, resp.Response.Text, "Нашла 7")
	})

	t.Run("utterance limit truncates input", func(t *testing.T) {
		router, _ := newTestRouter(t, func(cfg *config.Config) { cfg.Webhook.MaxUtteranceLength = 5 })
		w := do(t, router, http.MethodPost, "/webhook", webhookRequest("u2", 1, "найди суп", false))
		resp := decode[webhook.Response](t, w)
		assert.NotContains(t, resp.Response.Text, "Нашла")
	})
}

func TestWebhookRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/webhook", webhookRequest("", 1, "привет", false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBodySizeLimit(t *testing.T) {
	router, _ := newTestRouter(t, func(cfg *config.Config) { cfg.Server.MaxBodyBytes = 16 })

	w := do(t, router, http.MethodPost, "/api/v1/dialog/turn", conversation.TurnRequest{Utterance: "очень длинный запрос про суп"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Requests = 2
	})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/live", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/live", nil).Code)
	w := do(t, router, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
