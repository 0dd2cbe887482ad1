// Package conversation 對話 JSON API
package conversation

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe-assistant/internal/api/handlers"
	"recipe-assistant/internal/api/middleware"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/pkg/common"
)

// TurnRequest 一個對話回合
type TurnRequest struct {
	// SessionID 為空時建立新會話
	SessionID string `json:"session_id"`
	Utterance string `json:"utterance"`
}

// TurnResponse 回合結果
type TurnResponse struct {
	SessionID string       `json:"session_id"`
	Reply     dialog.Reply `json:"reply"`
}

// Handler 對話處理器
type Handler struct {
	engine             *dialog.Engine
	maxUtteranceLength int
}

// NewHandler maxUtteranceLength 限制輸入長度（rune）
func NewHandler(engine *dialog.Engine, maxUtteranceLength int) *Handler {
	return &Handler{engine: engine, maxUtteranceLength: maxUtteranceLength}
}

// Turn POST /api/v1/dialog/turn
func (h *Handler) Turn(c *gin.Context) {
	var req TurnRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		req.SessionID = common.GenerateUUID()
	}
	c.Set(middleware.SessionIDKey, req.SessionID)

	reply := h.engine.ProcessTurn(c.Request.Context(), req.SessionID, common.Truncate(req.Utterance, h.maxUtteranceLength))
	c.JSON(http.StatusOK, TurnResponse{SessionID: req.SessionID, Reply: reply})
}

// Session GET /api/v1/dialog/:session_id
func (h *Handler) Session(c *gin.Context) {
	state, ok := h.engine.Session(c.Param("session_id"))
	if !ok {
		handlers.RespondError(c, common.ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": state,
		"results": len(state.AllResults),
	})
}

// Reset DELETE /api/v1/dialog/:session_id
func (h *Handler) Reset(c *gin.Context) {
	id := c.Param("session_id")
	if !h.engine.ResetSession(id) {
		handlers.RespondError(c, common.ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "reset": true})
}
