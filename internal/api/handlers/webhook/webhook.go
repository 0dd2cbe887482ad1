// Package webhook 語音助理平台的 webhook
package webhook

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-assistant/internal/api/handlers"
	"recipe-assistant/internal/api/middleware"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/nlp"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// Request 平台送來的請求
type Request struct {
	Meta struct {
		Locale   string `json:"locale"`
		Timezone string `json:"timezone"`
	} `json:"meta"`
	Request struct {
		Command           string         `json:"command"`
		OriginalUtterance string         `json:"original_utterance"`
		Type              string         `json:"type"`
		Payload           map[string]any `json:"payload,omitempty"`
	} `json:"request"`
	Session struct {
		MessageID int64  `json:"message_id"`
		SessionID string `json:"session_id"`
		New       bool   `json:"new"`
		UserID    string `json:"user_id"`
	} `json:"session"`
	Version string `json:"version"`
}

// Button 回覆按鈕
type Button struct {
	Title string `json:"title"`
	Hide  bool   `json:"hide"`
}

// Response 回給平台的內容
type Response struct {
	Response struct {
		Text       string   `json:"text"`
		EndSession bool     `json:"end_session"`
		Buttons    []Button `json:"buttons,omitempty"`
	} `json:"response"`
	Version string `json:"version"`
}

// 按鈕文字
const (
	buttonMore      = "Еще"
	buttonOther     = "Другой рецепт"
	buttonRecommend = "Посоветуй что-нибудь"
	buttonHelp      = "Что ты умеешь?"
	buttonContinue  = "Читай дальше"

	continueHint = "\n\n(Скажите «читай дальше», чтобы продолжить)"
)

var continueCommands = map[string]struct{}{
	"продолжи": {}, "продолжай": {}, "читай дальше": {}, "дальше читай": {},
}

// Handler webhook 處理器
type Handler struct {
	engine  *dialog.Engine
	cfg     config.WebhookConfig
	pending *continuations
}

// NewHandler 建立 webhook 處理器
func NewHandler(engine *dialog.Engine, cfg config.WebhookConfig, session config.SessionConfig) *Handler {
	return &Handler{
		engine:  engine,
		cfg:     cfg,
		pending: newContinuations(session.TTL),
	}
}

// Handle POST /webhook
func (h *Handler) Handle(c *gin.Context) {
	var req Request
	if !handlers.BindJSON(c, &req) {
		return
	}
	sessionID := req.Session.SessionID
	if sessionID == "" {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("session.session_id is required")))
		return
	}
	c.Set(middleware.SessionIDKey, sessionID)

	if req.Session.New {
		h.engine.ResetSession(sessionID)
		h.pending.clear(sessionID)
	}

	utterance := strings.TrimSpace(req.Request.OriginalUtterance)
	if utterance == "" {
		utterance = strings.TrimSpace(req.Request.Command)
	}
	utterance = common.Truncate(utterance, h.cfg.MaxUtteranceLength)

	if isContinue(utterance) {
		if chunk, more, ok := h.pending.pop(sessionID); ok {
			h.respond(c, req, chunk, more, continueButtons(more), false)
			return
		}
	}
	h.pending.clear(sessionID)

	var reply dialog.Reply
	if utterance == "" && req.Session.New {
		reply = h.engine.Welcome()
	} else {
		reply = h.engine.ProcessTurn(c.Request.Context(), sessionID, utterance)
	}
	if reply.EndSession {
		h.engine.ResetSession(sessionID)
	}

	limit := h.cfg.MaxTextLength - len([]rune(continueHint))
	chunks := SplitText(reply.Text, limit)
	if len(chunks) > 1 {
		h.pending.set(sessionID, chunks[1:])
		common.LogDebug("回覆過長，分段傳送",
			zap.String("session_id", sessionID),
			zap.Int("chunks", len(chunks)),
		)
		h.respond(c, req, chunks[0], true, continueButtons(true), reply.EndSession)
		return
	}
	h.respond(c, req, reply.Text, false, buttonsFor(reply), reply.EndSession)
}

func (h *Handler) respond(c *gin.Context, req Request, text string, more bool, buttons []Button, end bool) {
	if more {
		text += continueHint
	}
	var resp Response
	resp.Response.Text = text
	resp.Response.EndSession = end
	resp.Response.Buttons = buttons
	resp.Version = req.Version
	if resp.Version == "" {
		resp.Version = h.cfg.Version
	}
	c.JSON(http.StatusOK, resp)
}

func isContinue(utterance string) bool {
	_, ok := continueCommands[strings.Join(nlp.Tokenize(utterance), " ")]
	return ok
}

func continueButtons(more bool) []Button {
	if more {
		return []Button{{Title: buttonContinue, Hide: true}}
	}
	return []Button{{Title: buttonOther, Hide: true}}
}

// buttonsFor 依回覆類型決定按鈕
func buttonsFor(reply dialog.Reply) []Button {
	switch reply.Kind {
	case dialog.KindList:
		buttons := make([]Button, 0, len(reply.Results)+2)
		for i := range reply.Results {
			buttons = append(buttons, Button{Title: strconv.Itoa(reply.First + i), Hide: true})
		}
		if reply.Page < reply.TotalPages {
			buttons = append(buttons, Button{Title: buttonMore, Hide: true})
		}
		return append(buttons, Button{Title: buttonOther, Hide: true})
	case dialog.KindDetail:
		return []Button{{Title: buttonOther, Hide: true}, {Title: buttonRecommend, Hide: true}}
	case dialog.KindFarewell:
		return nil
	default:
		return []Button{{Title: buttonRecommend, Hide: true}, {Title: buttonHelp, Hide: true}}
	}
}

// SplitText 依行切成不超過 limit 個 rune 的段落，單行過長時硬切
func SplitText(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var current []rune
	flush := func() {
		if chunk := strings.TrimRight(string(current), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current = current[:0]
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		if len(current)+len(runes) > limit {
			flush()
		}
		for len(runes) > limit {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		current = append(current, runes...)
	}
	flush()
	return chunks
}
