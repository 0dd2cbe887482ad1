package extract

import (
	"context"

	"go.uber.org/zap"

	"recipe-assistant/internal/pkg/common"
)

// Analyzer 先詢問語言模型，結果為空時退回規則抽詞
type Analyzer struct {
	analyzer TermAnalyzer
	fallback *Deterministic
}

var _ Extractor = (*Analyzer)(nil)

// NewAnalyzer 建立模型抽詞器
func NewAnalyzer(analyzer TermAnalyzer, fallback *Deterministic) *Analyzer {
	return &Analyzer{analyzer: analyzer, fallback: fallback}
}

// Extract 實作 Extractor
// 模型回傳的詞同樣經過詞形還原與語料詞彙過濾
func (a *Analyzer) Extract(ctx context.Context, utterance string) Terms {
	if a.analyzer != nil {
		dish, ingredients := a.analyzer.AnalyzeTerms(ctx, utterance)
		if len(dish) > 0 || len(ingredients) > 0 {
			terms := a.fallback.FromWords(dish, ingredients)
			if !terms.Empty() {
				return terms
			}
			common.LogDebug("模型抽詞不在語料詞彙中，改用規則抽詞",
				zap.Strings("dish", dish),
				zap.Strings("ingredients", ingredients),
			)
		}
	}
	return a.fallback.Extract(ctx, utterance)
}

// New 依設定選擇抽詞策略
func New(useAnalyzer bool, analyzer TermAnalyzer, fallback *Deterministic) Extractor {
	if useAnalyzer && analyzer != nil {
		return NewAnalyzer(analyzer, fallback)
	}
	return fallback
}
