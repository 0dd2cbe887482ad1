package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Corpus    *CorpusStatus          `json:"corpus,omitempty"`
	Sessions  int                    `json:"sessions"`
}

// CorpusStatus 食譜索引狀態
type CorpusStatus struct {
	Path       string    `json:"path"`
	Recipes    int       `json:"recipes"`
	Vocabulary int       `json:"vocabulary"`
	Embeddings bool      `json:"embeddings"`
	BuiltAt    time.Time `json:"built_at"`
}

func catalogFrom(c *gin.Context) *recipe.Catalog {
	if v, ok := c.Get("catalog"); ok {
		if catalog, ok := v.(*recipe.Catalog); ok {
			return catalog
		}
	}
	return nil
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	v, exists := c.Get("config")
	cfg, ok := v.(*config.Config)
	if !exists || !ok {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, common.ErrInternalError.ToResponse(false))
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if catalog := catalogFrom(c); catalog != nil {
		idx := catalog.Current()
		response.Corpus = &CorpusStatus{
			Path:       catalog.Path(),
			Recipes:    idx.Len(),
			Vocabulary: idx.VocabularySize(),
			Embeddings: idx.HasEmbeddings(),
			BuiltAt:    idx.BuiltAt(),
		}
	}
	if v, ok := c.Get("sessions"); ok {
		if store, ok := v.(*dialog.Store); ok {
			response.Sessions = store.Len()
		}
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 食譜已載入才算就緒
func ReadinessCheck(c *gin.Context) {
	catalog := catalogFrom(c)
	if catalog == nil || catalog.Size() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": common.ErrCorpusUnavailable.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"recipes": catalog.Size(),
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
