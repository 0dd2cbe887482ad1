package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/pkg/common"
)

// titleWeight 標題在搜尋文字中重複的次數
const titleWeight = 3

// Embedder 文字向量化能力
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Document 單一食譜的預先計算資料
type Document struct {
	Position    int
	Title       string // 折疊後的標題
	SearchText  string
	Lemmas      map[string]struct{}
	TitleLemmas map[string]struct{}
}

// Index 由語料一次建立，之後唯讀
type Index struct {
	recipes    []common.Recipe
	docs       []Document
	vocabulary map[string]struct{}
	embeddings [][]float32
	norm       *nlp.Normalizer
	builtAt    time.Time
}

type buildOptions struct {
	embedder  Embedder
	batchSize int
}

// BuildOption 建立索引的可選參數
type BuildOption func(*buildOptions)

// WithEmbedder 建立時一併計算食譜向量
func WithEmbedder(e Embedder, batchSize int) BuildOption {
	return func(o *buildOptions) {
		o.embedder = e
		if batchSize > 0 {
			o.batchSize = batchSize
		}
	}
}

// Build 建立索引；向量計算失敗時索引仍可用於詞彙比對
func Build(ctx context.Context, recipes []common.Recipe, norm *nlp.Normalizer, opts ...BuildOption) *Index {
	options := buildOptions{batchSize: 32}
	for _, opt := range opts {
		opt(&options)
	}

	idx := &Index{
		recipes:    recipes,
		docs:       make([]Document, len(recipes)),
		vocabulary: make(map[string]struct{}),
		norm:       norm,
		builtAt:    time.Now(),
	}

	for i, r := range recipes {
		text := searchText(r)
		doc := Document{
			Position:    i,
			Title:       nlp.Fold(r.Title),
			SearchText:  text,
			Lemmas:      norm.LemmaSet(text),
			TitleLemmas: norm.LemmaSet(r.Title),
		}
		for lemma := range doc.Lemmas {
			idx.vocabulary[lemma] = struct{}{}
		}
		idx.docs[i] = doc
	}

	// 語料中出現的詞，其同義詞也視為可搜尋
	present := make([]string, 0, len(idx.vocabulary))
	for lemma := range idx.vocabulary {
		present = append(present, lemma)
	}
	for _, lemma := range present {
		for _, syn := range norm.Synonyms(lemma) {
			idx.vocabulary[syn] = struct{}{}
		}
	}

	if options.embedder != nil && len(recipes) > 0 {
		embeddings, err := idx.embed(ctx, options.embedder, options.batchSize)
		if err != nil {
			common.LogWarn("食譜向量計算失敗，僅使用詞彙比對", zap.Error(err))
		} else {
			idx.embeddings = embeddings
		}
	}

	common.LogInfo("食譜索引已建立",
		zap.Int("recipes", len(recipes)),
		zap.Int("vocabulary", len(idx.vocabulary)),
		zap.Bool("embeddings", idx.HasEmbeddings()),
	)
	return idx
}

// searchText 標題重複加權後接上食材、標籤與描述
func searchText(r common.Recipe) string {
	parts := make([]string, 0, titleWeight+len(r.Ingredients)+len(r.Tags)+1)
	for i := 0; i < titleWeight; i++ {
		parts = append(parts, r.Title)
	}
	parts = append(parts, r.Ingredients...)
	parts = append(parts, r.Tags...)
	if desc := common.StringValue(r.Description); desc != "" {
		parts = append(parts, desc)
	}
	return nlp.Fold(strings.Join(parts, " "))
}

func (idx *Index) embed(ctx context.Context, embedder Embedder, batchSize int) ([][]float32, error) {
	out := make([][]float32, 0, len(idx.docs))
	for start := 0; start < len(idx.docs); start += batchSize {
		end := start + batchSize
		if end > len(idx.docs) {
			end = len(idx.docs)
		}
		texts := make([]string, 0, end-start)
		for _, doc := range idx.docs[start:end] {
			texts = append(texts, doc.SearchText)
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(vectors))
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Empty 空索引
func Empty(norm *nlp.Normalizer) *Index {
	return Build(context.Background(), nil, norm)
}

// Len 食譜數量
func (idx *Index) Len() int { return len(idx.recipes) }

// Recipe 依位置取得食譜
func (idx *Index) Recipe(i int) common.Recipe { return idx.recipes[i] }

// Recipes 全部食譜，呼叫端不得修改
func (idx *Index) Recipes() []common.Recipe { return idx.recipes }

// Document 依位置取得預先計算資料
func (idx *Index) Document(i int) *Document { return &idx.docs[i] }

// Normalizer 建立索引時使用的 Normalizer
func (idx *Index) Normalizer() *nlp.Normalizer { return idx.norm }

// HasTerm 詞是否出現在語料詞彙中
func (idx *Index) HasTerm(lemma string) bool {
	_, ok := idx.vocabulary[lemma]
	return ok
}

// VocabularySize 詞彙量
func (idx *Index) VocabularySize() int { return len(idx.vocabulary) }

// HasEmbeddings 是否有食譜向量
func (idx *Index) HasEmbeddings() bool {
	return len(idx.embeddings) == len(idx.recipes) && len(idx.recipes) > 0
}

// Embedding 依位置取得食譜向量
func (idx *Index) Embedding(i int) []float32 {
	if !idx.HasEmbeddings() {
		return nil
	}
	return idx.embeddings[i]
}

// BuiltAt 建立時間
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }
