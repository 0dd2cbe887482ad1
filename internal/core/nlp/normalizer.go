// Package nlp 提供俄文詞形還原、同義詞擴展與停用詞過濾
package nlp

import (
	"sort"
)

// Normalizer 詞形還原與同義詞擴展
// 建立後唯讀，可跨 goroutine 共用
type Normalizer struct {
	lemmatizer Lemmatizer
	synonyms   map[string]map[string]struct{}
	ambiguous  map[string]struct{}
}

// NewNormalizer 建立 Normalizer
// synonyms 的鍵與值會先經過詞形還原並建立雙向對應
// ambiguous 中的詞不參與任何同義詞擴展
func NewNormalizer(lemmatizer Lemmatizer, synonyms map[string][]string, ambiguous []string) *Normalizer {
	if lemmatizer == nil {
		lemmatizer = IdentityLemmatizer{}
	}
	n := &Normalizer{
		lemmatizer: lemmatizer,
		synonyms:   make(map[string]map[string]struct{}),
		ambiguous:  make(map[string]struct{}, len(ambiguous)),
	}
	for _, word := range ambiguous {
		n.ambiguous[n.Lemmatize(word)] = struct{}{}
	}

	for base, list := range synonyms {
		baseLemma := n.Lemmatize(base)
		for _, syn := range list {
			n.link(baseLemma, n.Lemmatize(syn))
		}
	}
	return n
}

// NewDefault 使用內建俄文詞表
func NewDefault(lemmatizer Lemmatizer, ambiguous []string) *Normalizer {
	return NewNormalizer(lemmatizer, DefaultSynonyms, ambiguous)
}

func (n *Normalizer) link(a, b string) {
	if a == "" || b == "" || a == b || n.IsAmbiguous(a) || n.IsAmbiguous(b) {
		return
	}
	n.add(a, b)
	n.add(b, a)
}

func (n *Normalizer) add(from, to string) {
	set, ok := n.synonyms[from]
	if !ok {
		set = make(map[string]struct{})
		n.synonyms[from] = set
	}
	set[to] = struct{}{}
}

// Lemmatize 回傳詞的標準形式，短詞原樣返回
func (n *Normalizer) Lemmatize(word string) string {
	w := Fold(word)
	if IsShort(w) {
		return w
	}
	return n.lemmatizer.Lemma(w)
}

// IsAmbiguous 是否為僅允許精確匹配的詞
func (n *Normalizer) IsAmbiguous(lemma string) bool {
	_, ok := n.ambiguous[lemma]
	return ok
}

// ExpandSynonyms 回傳詞本身與其同義詞（第一個元素永遠是詞本身）
func (n *Normalizer) ExpandSynonyms(lemma string) []string {
	if n.IsAmbiguous(lemma) {
		return []string{lemma}
	}
	set := n.synonyms[lemma]
	out := make([]string, 0, len(set)+1)
	for syn := range set {
		out = append(out, syn)
	}
	sort.Strings(out)
	return append([]string{lemma}, out...)
}

// Synonyms 回傳詞的同義詞，不含詞本身
func (n *Normalizer) Synonyms(lemma string) []string {
	return n.ExpandSynonyms(lemma)[1:]
}

// LemmaSet 將文字切詞並還原，忽略兩個字元以內的詞
func (n *Normalizer) LemmaSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if IsShort(tok) {
			continue
		}
		set[n.lemmatizer.Lemma(tok)] = struct{}{}
	}
	return set
}
