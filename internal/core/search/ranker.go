// Package search 依抽取詞對食譜評分排序並分頁
package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// Query 搜尋條件，詞皆為標準詞形
type Query struct {
	Dish        []string
	Ingredients []string
	// Text 原始語句，語意搜尋用
	Text string
}

// Terms 菜名在前，食材在後
func (q Query) Terms() []string {
	out := make([]string, 0, len(q.Dish)+len(q.Ingredients))
	out = append(out, q.Dish...)
	return append(out, q.Ingredients...)
}

// Empty 沒有任何詞
func (q Query) Empty() bool {
	return len(q.Dish) == 0 && len(q.Ingredients) == 0
}

// ScoredRecipe 排序結果
type ScoredRecipe struct {
	Recipe            common.Recipe `json:"recipe"`
	Position          int           `json:"-"`
	Score             float64       `json:"score"`
	Level             int           `json:"level"`
	DishMatches       int           `json:"dish_matches"`
	IngredientMatches int           `json:"ingredient_matches"`
}

// Ranker 排序策略
type Ranker interface {
	Rank(ctx context.Context, q Query) ([]ScoredRecipe, error)
}

// IndexSource 提供目前的索引
type IndexSource interface {
	Current() *recipe.Index
}

// 排序策略名稱
const (
	StrategyLexical  = "lexical"
	StrategySemantic = "semantic"
)

// New 依設定選擇排序策略；語意搜尋沒有 embedder 時使用詞彙比對
func New(cfg config.SearchConfig, source IndexSource, embedder recipe.Embedder) Ranker {
	lexical := NewLexical(cfg, source)
	if cfg.Strategy == StrategySemantic {
		if embedder == nil {
			common.LogWarn("未設定向量服務，語意搜尋改用詞彙比對")
			return lexical
		}
		return NewSemantic(cfg, source, embedder, lexical)
	}
	return lexical
}

// containsAny 任一展開詞出現在集合中（歧義詞只比對本身）
func containsAny(norm *nlp.Normalizer, set map[string]struct{}, term string) bool {
	for _, candidate := range norm.ExpandSynonyms(term) {
		if _, ok := set[candidate]; ok {
			return true
		}
	}
	return false
}

// uniqueByTitle 依折疊後標題去重，保留第一個
func uniqueByTitle(results []ScoredRecipe, limit int) []ScoredRecipe {
	seen := make(map[string]struct{}, len(results))
	out := make([]ScoredRecipe, 0, len(results))
	for _, r := range results {
		key := nlp.Fold(r.Recipe.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func logRank(strategy string, q Query, results int) {
	common.LogDebug("搜尋完成",
		zap.String("strategy", strategy),
		zap.Strings("terms", q.Terms()),
		zap.Int("results", results),
	)
}

func sortStable(results []ScoredRecipe, less func(a, b ScoredRecipe) bool) {
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}
