package nlp

import (
	"sync"

	"github.com/kljensen/snowball"
	"go.uber.org/zap"

	"recipe-assistant/internal/pkg/common"
)

// Lemmatizer 將詞形轉為標準形式
type Lemmatizer interface {
	Lemma(word string) string
}

// IdentityLemmatizer 不做任何轉換
type IdentityLemmatizer struct{}

func (IdentityLemmatizer) Lemma(word string) string { return word }

// SnowballLemmatizer 使用 Snowball 俄文詞幹演算法
type SnowballLemmatizer struct {
	once      sync.Once
	available bool
}

const snowballLanguage = "russian"

// NewSnowballLemmatizer 建立詞幹分析器，第一次使用時才檢查語言支援
func NewSnowballLemmatizer() *SnowballLemmatizer {
	return &SnowballLemmatizer{}
}

func (s *SnowballLemmatizer) init() {
	if _, err := snowball.Stem("проверка", snowballLanguage, true); err != nil {
		common.LogWarn("Snowball 無法使用，改用原始詞形", zap.Error(err))
		return
	}
	s.available = true
}

func (s *SnowballLemmatizer) Lemma(word string) string {
	s.once.Do(s.init)
	if !s.available {
		return word
	}
	stem, err := snowball.Stem(word, snowballLanguage, true)
	if err != nil || stem == "" {
		return word
	}
	return stem
}

// NewLemmatizer 依設定名稱建立分析器
func NewLemmatizer(name string) Lemmatizer {
	switch name {
	case "none":
		return IdentityLemmatizer{}
	default:
		return NewSnowballLemmatizer()
	}
}
