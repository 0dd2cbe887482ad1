package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Corpus      CorpusConfig     `mapstructure:"corpus"`
	NLP         NLPConfig        `mapstructure:"nlp"`
	Search      SearchConfig     `mapstructure:"search"`
	Session     SessionConfig    `mapstructure:"session"`
	AI          AIConfig         `mapstructure:"ai"`
	Ollama      OllamaConfig     `mapstructure:"ollama"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Webhook     WebhookConfig    `mapstructure:"webhook"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// CorpusConfig 食譜資料來源
type CorpusConfig struct {
	Path     string        `mapstructure:"path"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// NLPConfig 詞形分析設定
type NLPConfig struct {
	// snowball 或 none
	Analyzer string `mapstructure:"analyzer"`
}

// SearchConfig 搜尋與排序參數
type SearchConfig struct {
	Strategy          string   `mapstructure:"strategy"`
	PageSize          int      `mapstructure:"page_size"`
	TitleScore        float64  `mapstructure:"title_score"`
	PartialTitleScore float64  `mapstructure:"partial_title_score"`
	BodyScore         float64  `mapstructure:"body_score"`
	HighConfidence    float64  `mapstructure:"high_confidence"`
	SemanticMinScore  float64  `mapstructure:"semantic_min_score"`
	SemanticLimit     int      `mapstructure:"semantic_limit"`
	DishBoost         float64  `mapstructure:"dish_boost"`
	IngredientBoost   float64  `mapstructure:"ingredient_boost"`
	AmbiguousTerms    []string `mapstructure:"ambiguous_terms"`
	FuzzyMinScore     int      `mapstructure:"fuzzy_min_score"`
}

// SessionConfig 會話設定
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// AIConfig AI 配置
type AIConfig struct {
	// ollama、openrouter 或 none
	Provider         string        `mapstructure:"provider"`
	Timeout          time.Duration `mapstructure:"timeout"`
	EnableCache      bool          `mapstructure:"enable_cache"`
	ExtractTerms     bool          `mapstructure:"extract_terms"`
	SmallTalk        bool          `mapstructure:"small_talk"`
	EmbedBatchSize   int           `mapstructure:"embed_batch_size"`
	SmallTalkTokens  int           `mapstructure:"small_talk_tokens"`
	AnalyzeMaxTokens int           `mapstructure:"analyze_max_tokens"`
}

// OllamaConfig 本地 Ollama 服務
type OllamaConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed_model"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed_model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// WebhookConfig 語音助理 webhook 設定
type WebhookConfig struct {
	// MaxTextLength 回覆文字上限，超過時分段
	MaxTextLength int `mapstructure:"max_text_length"`
	// MaxUtteranceLength 收到的語句超過時截斷
	MaxUtteranceLength int    `mapstructure:"max_utterance_length"`
	Version            string `mapstructure:"version"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時僅使用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.GetViper()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"corpus:", config.Corpus.Path,
		"ai_provider:", config.AI.Provider,
		"strategy:", config.Search.Strategy,
		"openrouter_api_key:", maskAPIKey(config.OpenRouter.APIKey),
	)

	return &config, nil
}

// Default 僅包含預設值的設定，供測試與命令列工具使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return &config
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	_ = v.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("ollama.base_url", "OLLAMA_URL")
	_ = v.BindEnv("ollama.model", "OLLAMA_MODEL")
	_ = v.BindEnv("ai.provider", "AI_PROVIDER")
	_ = v.BindEnv("corpus.path", "RECIPES_FILE")
	_ = v.BindEnv("search.strategy", "SEARCH_STRATEGY")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "PORT")
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-assistant")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("corpus.path", "recipes.json")
	v.SetDefault("corpus.watch", true)
	v.SetDefault("corpus.debounce", "500ms")

	v.SetDefault("nlp.analyzer", "snowball")

	// 搜尋門檻皆可調整
	v.SetDefault("search.strategy", "lexical")
	v.SetDefault("search.page_size", 5)
	v.SetDefault("search.title_score", 1.0)
	v.SetDefault("search.partial_title_score", 0.8)
	v.SetDefault("search.body_score", 0.6)
	v.SetDefault("search.high_confidence", 0.8)
	v.SetDefault("search.semantic_min_score", 0.3)
	v.SetDefault("search.semantic_limit", 20)
	v.SetDefault("search.dish_boost", 0.4)
	v.SetDefault("search.ingredient_boost", 0.2)
	v.SetDefault("search.ambiguous_terms", []string{"рис"})
	v.SetDefault("search.fuzzy_min_score", 80)

	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.cleanup_interval", "5m")

	v.SetDefault("ai.provider", "none")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.enable_cache", true)
	v.SetDefault("ai.extract_terms", true)
	v.SetDefault("ai.small_talk", true)
	v.SetDefault("ai.embed_batch_size", 32)
	v.SetDefault("ai.small_talk_tokens", 80)
	v.SetDefault("ai.analyze_max_tokens", 100)

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2:3b")
	v.SetDefault("ollama.embed_model", "nomic-embed-text")

	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "mistralai/mistral-7b-instruct:free")
	v.SetDefault("openrouter.embed_model", "openai/text-embedding-3-small")
	v.SetDefault("openrouter.max_tokens", 150)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "recipe-assistant:")

	v.SetDefault("webhook.max_text_length", 1024)
	v.SetDefault("webhook.max_utterance_length", 1024)
	v.SetDefault("webhook.version", "1.0")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Search.Strategy {
	case "lexical", "semantic":
	default:
		return fmt.Errorf("unknown search strategy %q", config.Search.Strategy)
	}
	if config.Search.PageSize <= 0 {
		return fmt.Errorf("invalid search page size")
	}
	for name, score := range map[string]float64{
		"title_score":         config.Search.TitleScore,
		"partial_title_score": config.Search.PartialTitleScore,
		"body_score":          config.Search.BodyScore,
		"high_confidence":     config.Search.HighConfidence,
		"semantic_min_score":  config.Search.SemanticMinScore,
	} {
		if score < 0 || score > 1 {
			return fmt.Errorf("search.%s must be within [0,1]", name)
		}
	}

	switch config.NLP.Analyzer {
	case "snowball", "none":
	default:
		return fmt.Errorf("unknown nlp analyzer %q", config.NLP.Analyzer)
	}

	switch config.AI.Provider {
	case "none", "ollama":
	case "openrouter":
		if config.OpenRouter.APIKey == "" {
			return fmt.Errorf("openrouter api key is required")
		}
	default:
		return fmt.Errorf("unknown ai provider %q", config.AI.Provider)
	}
	if config.Search.Strategy == "semantic" && config.AI.Provider == "none" {
		return fmt.Errorf("semantic search requires an ai provider")
	}

	if config.Cache.Enabled {
		if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}
	if config.Webhook.MaxTextLength < 64 {
		return fmt.Errorf("webhook max text length too small")
	}
	if config.Webhook.MaxUtteranceLength <= 0 {
		return fmt.Errorf("webhook max utterance length must be positive")
	}

	return nil
}
