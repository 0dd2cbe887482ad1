package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/ai/cache"
	"recipe-assistant/internal/core/ai/ollama"
	"recipe-assistant/internal/core/ai/openrouter"
	"recipe-assistant/internal/core/ai/provider"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// 提供者名稱
const (
	ProviderNone       = "none"
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// Service AI 服務：抽詞、閒聊與向量
// 所有方法在模型不可用時安靜失敗，由呼叫端改用規則邏輯
type Service struct {
	config   *config.Config
	provider provider.Provider
	cache    cache.Cache
}

// NewProvider 依設定建立提供者；none 回傳 nil
func NewProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderOllama:
		return ollama.NewClient(provider.Config{
			BaseURL:    cfg.Ollama.BaseURL,
			Model:      cfg.Ollama.Model,
			EmbedModel: cfg.Ollama.EmbedModel,
			Timeout:    cfg.AI.Timeout,
		}), nil
	case ProviderOpenRouter:
		return openrouter.NewClient(provider.Config{
			BaseURL:    cfg.OpenRouter.BaseURL,
			APIKey:     cfg.OpenRouter.APIKey,
			Model:      cfg.OpenRouter.Model,
			EmbedModel: cfg.OpenRouter.EmbedModel,
			MaxTokens:  cfg.OpenRouter.MaxTokens,
			Timeout:    cfg.AI.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AI.Provider)
	}
}

// NewService 創建 AI 服務，p 可為 nil
func NewService(cfg *config.Config, p provider.Provider, c cache.Cache) *Service {
	if p == nil {
		common.LogInfo("未設定 AI 提供者，使用規則抽詞與固定回覆")
	} else {
		common.LogInfo("AI 服務已初始化",
			zap.String("model", p.GetModel()),
			zap.Duration("timeout", p.GetTimeout()),
			zap.Bool("cache", c != nil),
		)
	}
	return &Service{config: cfg, provider: p, cache: c}
}

// Available 是否有可用的提供者
func (s *Service) Available() bool {
	return s != nil && s.provider != nil
}

// AnalyzeTerms 請模型分出菜名與食材，失敗時回傳空結果
func (s *Service) AnalyzeTerms(ctx context.Context, utterance string) (dish, ingredients []string) {
	if !s.Available() || !s.config.AI.ExtractTerms {
		return nil, nil
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, nil
	}

	content, err := s.complete(ctx, "analyze", analyzeRequest(utterance, s.config.AI.AnalyzeMaxTokens))
	if err != nil {
		return nil, nil
	}
	dish, ingredients = parseTerms(content)
	common.LogDebug("模型抽詞結果",
		zap.Strings("dish", dish),
		zap.Strings("ingredients", ingredients),
	)
	return dish, ingredients
}

// GenerateSmallTalk 產生閒聊回覆，失敗或停用時回傳空字串
func (s *Service) GenerateSmallTalk(ctx context.Context, topic, utterance string) string {
	if !s.Available() || !s.config.AI.SmallTalk {
		return ""
	}
	req := smallTalkRequest(topic, strings.TrimSpace(utterance), s.config.AI.SmallTalkTokens)
	if req == nil {
		return ""
	}
	content, err := s.complete(ctx, "smalltalk", req)
	if err != nil {
		return ""
	}
	return cleanReply(content)
}

// Embed 計算向量；沒有提供者時回傳 ErrEmbeddingsUnavailable
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !s.Available() {
		return nil, common.ErrEmbeddingsUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.AI.Timeout)
	defer cancel()

	start := time.Now()
	vectors, err := s.provider.Embed(ctx, texts)
	common.LogAICall("embed", s.provider.GetModel(), time.Since(start), err)
	if err != nil {
		return nil, common.ErrEmbeddingsUnavailable.Wrap(err)
	}
	return vectors, nil
}

// complete 帶超時與緩存的生成呼叫
func (s *Service) complete(ctx context.Context, operation string, req *provider.Request) (string, error) {
	key := cache.Key(operation, s.provider.GetModel(), req.Prompt())
	if s.cache != nil && s.config.AI.EnableCache {
		if val, err := s.cache.Get(ctx, key); err == nil {
			common.LogCacheHit(operation)
			return val, nil
		} else if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		} else {
			common.LogCacheMiss(operation)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.AI.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	common.LogAICall(operation, s.provider.GetModel(), time.Since(start), err)
	if err != nil {
		return "", common.ErrAnalyzerUnavailable.Wrap(err)
	}

	if s.cache != nil && s.config.AI.EnableCache {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogDebug("寫入快取失敗", zap.Error(err))
		}
	}
	return resp.Content, nil
}

// Close 關閉提供者與緩存
func (s *Service) Close() error {
	var errs []error
	if s.provider != nil {
		errs = append(errs, s.provider.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}
