package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

var errNoEmbeddings = errors.New("index has no embeddings")

// Semantic 以向量相似度為基礎分數，再依菜名與食材命中加分
// 任何錯誤都讓整個查詢改用詞彙比對
type Semantic struct {
	source          IndexSource
	embedder        recipe.Embedder
	fallback        Ranker
	minScore        float64
	limit           int
	dishBoost       float64
	ingredientBoost float64
}

var _ Ranker = (*Semantic)(nil)

// NewSemantic 建立語意排序
func NewSemantic(cfg config.SearchConfig, source IndexSource, embedder recipe.Embedder, fallback Ranker) *Semantic {
	return &Semantic{
		source:          source,
		embedder:        embedder,
		fallback:        fallback,
		minScore:        cfg.SemanticMinScore,
		limit:           cfg.SemanticLimit,
		dishBoost:       cfg.DishBoost,
		ingredientBoost: cfg.IngredientBoost,
	}
}

// Rank 實作 Ranker
func (s *Semantic) Rank(ctx context.Context, q Query) ([]ScoredRecipe, error) {
	if q.Empty() {
		return []ScoredRecipe{}, nil
	}
	results, err := s.rank(ctx, q)
	if err != nil {
		common.LogWarn("語意搜尋失敗，改用詞彙比對", zap.Error(err))
		return s.fallback.Rank(ctx, q)
	}
	logRank(StrategySemantic, q, len(results))
	return results, nil
}

func (s *Semantic) rank(ctx context.Context, q Query) ([]ScoredRecipe, error) {
	idx := s.source.Current()
	if !idx.HasEmbeddings() {
		return nil, errNoEmbeddings
	}

	text := strings.TrimSpace(q.Text)
	if text == "" {
		text = strings.Join(q.Terms(), " ")
	}
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}
	query := vectors[0]

	norm := idx.Normalizer()
	var results []ScoredRecipe
	for i := 0; i < idx.Len(); i++ {
		doc := idx.Document(i)

		// 菜名在任何位置出現即算命中，只有出現在標題才加分
		dishMatches, titleDishes := 0, 0
		for _, term := range q.Dish {
			if containsAny(norm, doc.Lemmas, term) {
				dishMatches++
			}
			if containsAny(norm, doc.TitleLemmas, term) {
				titleDishes++
			}
		}
		ingredientMatches := 0
		for _, term := range q.Ingredients {
			if containsAny(norm, doc.Lemmas, term) {
				ingredientMatches++
			}
		}
		if dishMatches+ingredientMatches == 0 {
			continue
		}
		if len(q.Ingredients) >= 2 && ingredientMatches < len(q.Ingredients) {
			continue
		}

		score := Cosine(query, idx.Embedding(i)) +
			s.dishBoost*float64(titleDishes) +
			s.ingredientBoost*float64(ingredientMatches)
		score = math.Min(score, 1.0)
		if score < s.minScore {
			continue
		}
		results = append(results, ScoredRecipe{
			Recipe:            idx.Recipe(i),
			Position:          i,
			Score:             score,
			DishMatches:       dishMatches,
			IngredientMatches: ingredientMatches,
		})
	}

	sortStable(results, func(a, b ScoredRecipe) bool {
		aDish, bDish := a.DishMatches > 0, b.DishMatches > 0
		if aDish != bDish {
			return aDish
		}
		if a.IngredientMatches != b.IngredientMatches {
			return a.IngredientMatches > b.IngredientMatches
		}
		return a.Score > b.Score
	})
	return uniqueByTitle(results, s.limit), nil
}

// Cosine 兩向量的餘弦相似度，長度不符或零向量回傳 0
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
