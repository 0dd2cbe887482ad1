package search

import (
	"context"

	"recipe-assistant/internal/infrastructure/config"
)

// 比對等級
const (
	LevelBody         = 1
	LevelPartialTitle = 2
	LevelTitle        = 3
)

// Lexical 依詞形比對，所有詞都必須出現在標題或內文
type Lexical struct {
	source            IndexSource
	titleScore        float64
	partialTitleScore float64
	bodyScore         float64
}

var _ Ranker = (*Lexical)(nil)

// NewLexical 建立詞彙排序
func NewLexical(cfg config.SearchConfig, source IndexSource) *Lexical {
	return &Lexical{
		source:            source,
		titleScore:        cfg.TitleScore,
		partialTitleScore: cfg.PartialTitleScore,
		bodyScore:         cfg.BodyScore,
	}
}

// Rank 實作 Ranker，沒有任何詞時回傳空結果
func (l *Lexical) Rank(_ context.Context, q Query) ([]ScoredRecipe, error) {
	terms := q.Terms()
	if len(terms) == 0 {
		return []ScoredRecipe{}, nil
	}

	idx := l.source.Current()
	norm := idx.Normalizer()
	dishCount := len(q.Dish)

	var results []ScoredRecipe
	for i := 0; i < idx.Len(); i++ {
		doc := idx.Document(i)
		inTitle := 0
		dishMatches, ingredientMatches := 0, 0
		accepted := true

		for n, term := range terms {
			title := containsAny(norm, doc.TitleLemmas, term)
			if !title && !containsAny(norm, doc.Lemmas, term) {
				accepted = false
				break
			}
			if title {
				inTitle++
			}
			if n < dishCount {
				dishMatches++
			} else {
				ingredientMatches++
			}
		}
		if !accepted {
			continue
		}

		level, score := LevelBody, l.bodyScore
		switch {
		case inTitle == len(terms):
			level, score = LevelTitle, l.titleScore
		case inTitle > 0:
			level, score = LevelPartialTitle, l.partialTitleScore
		}
		results = append(results, ScoredRecipe{
			Recipe:            idx.Recipe(i),
			Position:          i,
			Score:             score,
			Level:             level,
			DishMatches:       dishMatches,
			IngredientMatches: ingredientMatches,
		})
	}

	sortStable(results, func(a, b ScoredRecipe) bool {
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.Score > b.Score
	})
	results = uniqueByTitle(results, 0)
	logRank(StrategyLexical, q, len(results))
	return results, nil
}
