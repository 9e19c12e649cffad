// README: Thread and chat handlers; every conversational turn goes through service.Concierge.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"concierge/internal/http/middleware"
	"concierge/internal/modules/session"
	"concierge/internal/service"
)

type ChatHandler struct {
	concierge *service.Concierge
	timeout   time.Duration
}

func NewChatHandler(c *service.Concierge, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatHandler{concierge: c, timeout: timeout}
}

type messageReq struct {
	Message string `json:"message"`
}

type chatReq struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type historyMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *ChatHandler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// CreateThread handles POST /api/threads.
func (h *ChatHandler) CreateThread(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	st, err := h.concierge.CreateThread(ctx, middleware.CallerUID(c))
	if err != nil {
		writeConciergeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"thread_id": st.ThreadID})
}

// GetThread handles GET /api/threads/:id.
func (h *ChatHandler) GetThread(c *gin.Context) {
	st, ok := h.load(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, st)
}

// History handles GET /api/threads/:id/history.
func (h *ChatHandler) History(c *gin.Context) {
	st, ok := h.load(c)
	if !ok {
		return
	}
	msgs := make([]historyMessage, 0, len(st.History))
	for i, m := range st.History {
		id := m.ID
		if id == "" {
			id = session.LegacyMessageID(st.ThreadID, i)
		}
		msgs = append(msgs, historyMessage{
			ID:      id,
			Role:    m.Role,
			Content: m.Content,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"thread_id": st.ThreadID, "messages": msgs})
}

// DeleteThread handles DELETE /api/threads/:id.
func (h *ChatHandler) DeleteThread(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid thread id")
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.concierge.DeleteThread(ctx, id, middleware.CallerUID(c)); err != nil {
		writeConciergeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostMessage handles POST /api/threads/:id/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.concierge.TurnAs(ctx, id, middleware.CallerUID(c), req.Message)
	if err != nil {
		writeConciergeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"thread_id": id, "messages": res.Messages, "state": res.State})
}

// Chat handles POST /api/chat. A missing thread_id starts a new thread.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, service.ErrEmptyMessage.Error())
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	uid := middleware.CallerUID(c)
	id := req.ThreadID
	if id == "" {
		st, err := h.concierge.CreateThread(ctx, uid)
		if err != nil {
			writeConciergeError(c, err)
			return
		}
		id = st.ThreadID
	} else if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	res, err := h.concierge.TurnAs(ctx, id, uid, req.Message)
	if err != nil {
		writeConciergeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"thread_id": id, "reply": res.Reply()})
}

func (h *ChatHandler) load(c *gin.Context) (*session.State, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid thread id")
		return nil, false
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	st, err := h.concierge.Thread(ctx, id, middleware.CallerUID(c))
	if err != nil {
		writeConciergeError(c, err)
		return nil, false
	}
	return st, true
}
