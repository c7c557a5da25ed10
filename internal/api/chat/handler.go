package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exportmate/exportmate/internal/domain"
	"github.com/exportmate/exportmate/internal/render"
	"github.com/exportmate/exportmate/internal/service"
)

// Handler handles conversation API requests
type Handler struct {
	conversation *service.ConversationService
	ui           *service.UIService
	sessions     SessionReader
}

// SessionReader is the read side of the session store the handler needs.
type SessionReader interface {
	Active() *domain.ChatSession
}

// NewHandler creates a new chat handler
func NewHandler(conversation *service.ConversationService, ui *service.UIService, sessions SessionReader) *Handler {
	return &Handler{conversation: conversation, ui: ui, sessions: sessions}
}

// RegisterRoutes registers conversation routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/messages", h.Messages)
	r.POST("/messages", h.Send)
	r.POST("/predict", h.Predict)
	r.GET("/form", h.Form)
	r.GET("/status", h.Status)
}

// Messages returns the active session's render model.
func (h *Handler) Messages(c *gin.Context) {
	active := h.sessions.Active()
	c.JSON(http.StatusOK, gin.H{
		"session_id": active.ID,
		"title":      active.Title,
		"messages":   render.RenderMessages(active.Messages),
	})
}

// Send runs one advisory chat turn.
func (h *Handler) Send(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.conversation.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrRequestInFlight):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidRequest):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": resp.SessionID,
		"message":    render.RenderMessage(resp.Message),
	})
}

// Predict runs one price-prediction turn.
func (h *Handler) Predict(c *gin.Context) {
	var form domain.PredictionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.conversation.SubmitPrediction(c.Request.Context(), form)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrRequestInFlight):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrIncompleteQuery):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": resp.SessionID,
		"message":    render.RenderMessage(resp.Message),
	})
}

// Form returns the retained prediction form so a failed submission can be
// retried without re-typing.
func (h *Handler) Form(c *gin.Context) {
	c.JSON(http.StatusOK, h.conversation.Form())
}

// Status returns the in-flight flags of both request flows.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.conversation.Status())
}

// Config returns the frontend presentation configuration.
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, h.ui.UIConfig())
}

// Stats returns conversation totals.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.conversation.Stats())
}
