package recipe

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/pkg/common"
)

// Catalog 持有目前的索引；重新載入時整體替換
type Catalog struct {
	path    string
	norm    *nlp.Normalizer
	opts    []BuildOption
	current atomic.Pointer[Index]
	reload  sync.Mutex
}

// NewCatalog 建立 Catalog，載入前為空索引
func NewCatalog(path string, norm *nlp.Normalizer, opts ...BuildOption) *Catalog {
	c := &Catalog{
		path: path,
		norm: norm,
		opts: opts,
	}
	c.current.Store(Empty(norm))
	return c
}

// NewStaticCatalog 以記憶體中的食譜建立 Catalog
func NewStaticCatalog(ctx context.Context, recipes []common.Recipe, norm *nlp.Normalizer, opts ...BuildOption) *Catalog {
	c := &Catalog{norm: norm, opts: opts}
	c.current.Store(Build(ctx, recipes, norm, opts...))
	return c
}

// Load 讀取檔案並替換索引
// 檔案無法讀取時保留目前索引並回傳錯誤
func (c *Catalog) Load(ctx context.Context) error {
	c.reload.Lock()
	defer c.reload.Unlock()

	recipes, err := LoadCorpus(c.path)
	if err != nil {
		common.LogWarn("食譜重新載入失敗，沿用目前索引",
			zap.String("path", c.path),
			zap.Int("current", c.Size()),
			zap.Error(err),
		)
		return err
	}

	c.Swap(Build(ctx, recipes, c.norm, c.opts...))
	return nil
}

// Swap 原子替換索引
func (c *Catalog) Swap(idx *Index) {
	if idx == nil {
		idx = Empty(c.norm)
	}
	c.current.Store(idx)
}

// Current 目前的索引
func (c *Catalog) Current() *Index {
	return c.current.Load()
}

// HasTerm 目前索引的詞彙查詢
func (c *Catalog) HasTerm(lemma string) bool {
	return c.Current().HasTerm(lemma)
}

// Size 目前食譜數量
func (c *Catalog) Size() int {
	return c.Current().Len()
}

// Path 語料檔路徑
func (c *Catalog) Path() string {
	return c.path
}
