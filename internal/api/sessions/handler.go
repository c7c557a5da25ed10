package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exportmate/exportmate/internal/domain"
	"github.com/exportmate/exportmate/internal/render"
	"github.com/exportmate/exportmate/internal/store"
)

// Handler handles session lifecycle API requests
type Handler struct {
	store *store.SessionStore
}

// NewHandler creates a new sessions handler
func NewHandler(s *store.SessionStore) *Handler {
	return &Handler{store: s}
}

// RegisterRoutes registers session routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.POST("/:id/activate", h.Activate)
	r.PUT("/:id", h.Rename)
	r.DELETE("/:id", h.Delete)
}

// List returns summaries of every session, active first.
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.store.List()})
}

// Create archives the current session and starts a fresh one.
func (h *Handler) Create(c *gin.Context) {
	session := h.store.CreateSession()
	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"title":      session.Title,
		"messages":   render.RenderMessages(session.Messages),
	})
}

// Get returns one session's render model.
func (h *Handler) Get(c *gin.Context) {
	session := h.store.Get(c.Param("id"))
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"title":      session.Title,
		"messages":   render.RenderMessages(session.Messages),
	})
}

// Activate switches the named session into the working slot. An unknown id
// leaves the state untouched; the handler still answers 200 so stale
// references stay idempotent for the UI.
func (h *Handler) Activate(c *gin.Context) {
	switched := h.store.SwitchTo(c.Param("id"))
	active := h.store.Active()
	c.JSON(http.StatusOK, gin.H{
		"switched":   switched,
		"session_id": active.ID,
		"title":      active.Title,
		"messages":   render.RenderMessages(active.Messages),
	})
}

// Rename overwrites a session's title, working or archived.
func (h *Handler) Rename(c *gin.Context) {
	var req domain.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.store.RenameInHistory(c.Param("id"), req.Title) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": h.store.List()})
}

// Delete removes a session permanently. Deleting the active session
// replaces the current conversation with a fresh one.
func (h *Handler) Delete(c *gin.Context) {
	h.store.DeleteFromHistory(c.Param("id"))
	active := h.store.Active()
	c.JSON(http.StatusOK, gin.H{
		"session_id": active.ID,
		"sessions":   h.store.List(),
	})
}
