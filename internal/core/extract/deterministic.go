package extract

import (
	"context"

	"recipe-assistant/internal/core/nlp"
)

// Deterministic 以停用詞、詞形還原與語料詞彙抽詞
type Deterministic struct {
	norm   *nlp.Normalizer
	vocab  Vocabulary
	dishes dishLexicon
}

var _ Extractor = (*Deterministic)(nil)

// NewDeterministic 建立規則抽詞器，dishWords 為空時使用內建菜名詞表
func NewDeterministic(norm *nlp.Normalizer, vocab Vocabulary, dishWords []string) *Deterministic {
	if len(dishWords) == 0 {
		dishWords = nlp.DefaultDishWords
	}
	return &Deterministic{
		norm:   norm,
		vocab:  vocab,
		dishes: newDishLexicon(norm, dishWords),
	}
}

// Extract 實作 Extractor
func (d *Deterministic) Extract(_ context.Context, utterance string) Terms {
	set := newTermSet()
	for _, token := range nlp.Tokenize(utterance) {
		if nlp.IsShort(token) || nlp.IsStopWord(token) {
			continue
		}
		d.keep(set, token)
	}
	return set.terms
}

// FromWords 將已分好的詞轉為 Terms，不做停用詞過濾
func (d *Deterministic) FromWords(dish, ingredients []string) Terms {
	set := newTermSet()
	for _, w := range dish {
		d.keepAs(set, w, true)
	}
	for _, w := range ingredients {
		d.keepAs(set, w, false)
	}
	return set.terms
}

func (d *Deterministic) keep(set *termSet, word string) {
	lemma := d.norm.Lemmatize(word)
	term, ok := resolve(d.norm, d.vocab, lemma)
	if !ok {
		return
	}
	set.add(term, word, d.dishes.isDish(d.norm, lemma))
}

// keepAs 依呼叫端指定的分類加入；多字詞逐詞處理
func (d *Deterministic) keepAs(set *termSet, phrase string, dish bool) {
	for _, token := range nlp.Tokenize(phrase) {
		if nlp.IsShort(token) {
			continue
		}
		term, ok := resolve(d.norm, d.vocab, d.norm.Lemmatize(token))
		if !ok {
			continue
		}
		set.add(term, token, dish)
	}
}
