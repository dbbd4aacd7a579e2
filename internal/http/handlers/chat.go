package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

type createConversationReq struct {
	Title string `json:"title" binding:"max=120"`
}

// POST /api/chat/conversations
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createConversationReq
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	conv, err := h.chat.CreateConversation(c.Request.Context(), userID, req.Title)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"conversation": conv})
}

// GET /api/chat/conversations?limit=50
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convs, err := h.chat.ListConversations(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": convs})
}

// GET /api/chat/conversations/:id/messages?limit=50
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.chat.ListMessages(c.Request.Context(), userID, convID, queryLimit(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

type sendMessageReq struct {
	Content string `json:"content" binding:"required"`
}

// POST /api/chat/conversations/:id/messages
// Streams the reply as server-sent events: "delta" events while the model
// writes, then one "done" event carrying both stored messages. Errors before
// the first delta are plain JSON responses; later ones are an "error" event.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sendMessageReq
	if !bindJSON(c, &req) {
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
	}

	userMsg, reply, err := h.chat.SendMessage(c.Request.Context(), userID, convID, req.Content, func(delta string) {
		start()
		c.SSEvent("delta", gin.H{"delta": delta})
		c.Writer.Flush()
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.log.Debug("chat client went away", "conversation_id", convID)
			return
		}
		if !started {
			response.RespondError(c, err)
			return
		}
		msg := "reply failed"
		code := apierr.CodeInternal
		if e, ok := apierr.As(err); ok {
			code = e.Code
		}
		c.SSEvent("error", response.APIError{Message: msg, Code: code})
		c.Writer.Flush()
		return
	}
	start()
	c.SSEvent("done", gin.H{"user_message": userMsg, "message": reply})
	c.Writer.Flush()
}
