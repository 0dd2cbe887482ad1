// Package recipe 無狀態的食譜搜尋 API
package recipe

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-assistant/internal/api/handlers"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/extract"
	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/pkg/common"
)

// SearchRequest 自由文字或直接指定詞，兩者擇一
type SearchRequest struct {
	Query           string   `json:"query"`
	DishTerms       []string `json:"dish_terms"`
	IngredientTerms []string `json:"ingredient_terms"`
	// Page 從 1 開始，預設第 1 頁
	Page int `json:"page"`
}

// SearchResponse 搜尋結果的一頁
type SearchResponse struct {
	Terms      extract.Terms         `json:"terms"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
	Results    []search.ScoredRecipe `json:"results"`
}

// Handler 食譜處理器
type Handler struct {
	extractor extract.Extractor
	words     *extract.Deterministic
	ranker    search.Ranker
	source    search.IndexSource
	pager     search.Pager
}

// NewHandler 建立食譜處理器
func NewHandler(extractor extract.Extractor, words *extract.Deterministic, ranker search.Ranker, source search.IndexSource, pager search.Pager) *Handler {
	return &Handler{
		extractor: extractor,
		words:     words,
		ranker:    ranker,
		source:    source,
		pager:     pager,
	}
}

// HandleSearch POST /api/v1/recipe/search
func (h *Handler) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 0 {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("page must be positive")))
		return
	}

	var terms extract.Terms
	switch {
	case len(req.DishTerms) > 0 || len(req.IngredientTerms) > 0:
		terms = h.words.FromWords(req.DishTerms, req.IngredientTerms)
	case strings.TrimSpace(req.Query) != "":
		terms = h.extractor.Extract(c.Request.Context(), req.Query)
	default:
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("query or terms are required")))
		return
	}

	results, err := h.ranker.Rank(c.Request.Context(), search.Query{
		Dish:        terms.Dish,
		Ingredients: terms.Ingredients,
		Text:        req.Query,
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogDebug("食譜搜尋",
		zap.Strings("terms", terms.All()),
		zap.Int("results", len(results)),
		zap.Int("page", req.Page),
	)

	c.JSON(http.StatusOK, SearchResponse{
		Terms:      terms,
		Total:      len(results),
		Page:       req.Page,
		TotalPages: h.pager.TotalPages(len(results)),
		Results:    h.pager.Page(results, req.Page-1),
	})
}

// HandleGet GET /api/v1/recipe/:position，回傳食譜與文字版本
func (h *Handler) HandleGet(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	idx := h.source.Current()
	if err != nil || position < 0 || position >= idx.Len() {
		handlers.RespondError(c, common.ErrNotFound)
		return
	}
	r := idx.Recipe(position)
	c.JSON(http.StatusOK, gin.H{
		"recipe": r,
		"text":   dialog.RecipeText(r),
	})
}
