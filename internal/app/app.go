// Package app 依設定組裝所有元件
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"recipe-assistant/internal/api"
	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/core/ai/service"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/extract"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// App 執行期元件
type App struct {
	Config  *config.Config
	Catalog *recipe.Catalog
	Engine  *dialog.Engine
	AI      *service.Service

	services *api.Services
	cache    cache.Cache
	watcher  *recipe.Watcher
	cancel   context.CancelFunc
}

// New 建立並啟動背景工作（會話清理、語料監看），ctx 結束或 Close 時停止
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{Config: cfg, cancel: cancel}

	c, err := cache.New(cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.cache = c

	p, err := service.NewProvider(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	a.AI = service.NewService(cfg, p, c)

	norm := nlp.NewDefault(nlp.NewLemmatizer(cfg.NLP.Analyzer), cfg.Search.AmbiguousTerms)

	var embedder recipe.Embedder
	var opts []recipe.BuildOption
	if cfg.Search.Strategy == search.StrategySemantic && a.AI.Available() {
		embedder = a.AI
		opts = append(opts, recipe.WithEmbedder(embedder, cfg.AI.EmbedBatchSize))
	}

	a.Catalog = recipe.NewCatalog(cfg.Corpus.Path, norm, opts...)
	if err := a.Catalog.Load(ctx); err != nil {
		// 語料不可用時以空索引繼續
		common.LogWarn("食譜資料無法載入，以空語料啟動",
			zap.String("path", cfg.Corpus.Path),
			zap.Error(common.ErrCorpusUnavailable.Wrap(err)),
		)
	}

	if cfg.Corpus.Watch {
		w, err := recipe.NewWatcher(a.Catalog, cfg.Corpus.Debounce)
		if err != nil {
			common.LogWarn("無法監看食譜檔案", zap.Error(err))
		} else {
			a.watcher = w
			go w.Run(ctx)
		}
	}

	words := extract.NewDeterministic(norm, a.Catalog, nil)
	extractor := extract.New(cfg.AI.ExtractTerms && a.AI.Available(), a.AI, words)
	ranker := search.New(cfg.Search, a.Catalog, embedder)

	store := dialog.NewStore(cfg.Session.TTL)
	store.Start(ctx, cfg.Session.CleanupInterval)

	a.Engine = dialog.NewEngine(cfg, dialog.Deps{
		Store:     store,
		Index:     a.Catalog,
		Extractor: extractor,
		Ranker:    ranker,
		SmallTalk: a.AI,
	})

	a.services = &api.Services{
		Engine:    a.Engine,
		Catalog:   a.Catalog,
		Extractor: extractor,
		Words:     words,
		Ranker:    ranker,
	}

	common.LogInfo("應用元件已初始化",
		zap.Int("recipes", a.Catalog.Size()),
		zap.String("strategy", cfg.Search.Strategy),
		zap.Bool("ai", a.AI.Available()),
		zap.Bool("watch", a.watcher != nil),
	)
	return a, nil
}

// Services 提供給路由的服務
func (a *App) Services() *api.Services { return a.services }

// Close 停止背景工作並釋放連線
func (a *App) Close() error {
	a.cancel()
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	if a.AI != nil {
		// Service.Close 會一併關閉緩存
		errs = append(errs, a.AI.Close())
	} else if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}
