// Package extract 從使用者語句中取出菜名與食材詞
package extract

import (
	"context"
	"strings"

	"recipe-assistant/internal/core/nlp"
)

// Terms 抽取結果，Dish 與 Ingredients 皆為標準詞形
type Terms struct {
	Dish        []string `json:"dish_terms"`
	Ingredients []string `json:"ingredient_terms"`
	// Words 對應的原始字詞，用於回覆顯示
	Words []string `json:"words,omitempty"`
}

// All 菜名在前，食材在後
func (t Terms) All() []string {
	out := make([]string, 0, len(t.Dish)+len(t.Ingredients))
	out = append(out, t.Dish...)
	return append(out, t.Ingredients...)
}

// Empty 沒有任何詞
func (t Terms) Empty() bool {
	return len(t.Dish) == 0 && len(t.Ingredients) == 0
}

// Display 回覆中顯示的字詞
func (t Terms) Display() string {
	if len(t.Words) > 0 {
		return strings.Join(t.Words, ", ")
	}
	return strings.Join(t.All(), ", ")
}

// Extractor 抽取策略
type Extractor interface {
	Extract(ctx context.Context, utterance string) Terms
}

// Vocabulary 語料詞彙
type Vocabulary interface {
	HasTerm(lemma string) bool
}

// TermAnalyzer 外部語言模型抽詞能力，不可用時回傳空結果
type TermAnalyzer interface {
	AnalyzeTerms(ctx context.Context, utterance string) (dish, ingredients []string)
}

// termSet 去重並維持加入順序
type termSet struct {
	seen  map[string]struct{}
	terms Terms
}

func newTermSet() *termSet {
	return &termSet{seen: make(map[string]struct{})}
}

func (s *termSet) add(lemma, word string, dish bool) {
	if _, ok := s.seen[lemma]; ok {
		return
	}
	s.seen[lemma] = struct{}{}
	if dish {
		s.terms.Dish = append(s.terms.Dish, lemma)
	} else {
		s.terms.Ingredients = append(s.terms.Ingredients, lemma)
	}
	s.terms.Words = append(s.terms.Words, word)
}

// resolve 回傳第一個出現在語料詞彙中的展開詞
func resolve(norm *nlp.Normalizer, vocab Vocabulary, lemma string) (string, bool) {
	for _, candidate := range norm.ExpandSynonyms(lemma) {
		if vocab.HasTerm(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// dishLexicon 菜名詞表的標準詞形
type dishLexicon map[string]struct{}

func newDishLexicon(norm *nlp.Normalizer, words []string) dishLexicon {
	set := make(dishLexicon, len(words))
	for _, w := range words {
		set[norm.Lemmatize(w)] = struct{}{}
	}
	return set
}

func (d dishLexicon) isDish(norm *nlp.Normalizer, lemma string) bool {
	for _, candidate := range norm.ExpandSynonyms(lemma) {
		if _, ok := d[candidate]; ok {
			return true
		}
	}
	return false
}
