// Package handlers HTTP 處理器共用的回應工具
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// Debug 從 context 取得設定中的除錯模式
func Debug(c *gin.Context) bool {
	if v, ok := c.Get("config"); ok {
		if cfg, ok := v.(*config.Config); ok {
			return cfg.App.Debug
		}
	}
	return false
}

// RespondError 將錯誤轉為 ErrorResponse；非 CustomError 視為內部錯誤
func RespondError(c *gin.Context, err error) {
	ce, ok := common.AsCustomError(err)
	switch {
	case ok:
	case common.IsValidationError(err):
		ce = common.ErrInvalidRequest.Wrap(err)
	default:
		ce = common.ErrInternalError.Wrap(err)
	}

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.ToResponse(Debug(c)))
}

// BindJSON 解析請求體，失敗時回應 400，超過大小上限回應 413
func BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, common.ErrPayloadTooLarge.Wrap(err))
		} else {
			RespondError(c, common.ErrInvalidRequest.Wrap(err))
		}
		return false
	}
	return true
}
