package api

import (
	"github.com/gin-gonic/gin"

	"github.com/exportmate/exportmate/internal/api/chat"
	"github.com/exportmate/exportmate/internal/api/middleware"
	"github.com/exportmate/exportmate/internal/api/sessions"
	"github.com/exportmate/exportmate/internal/service"
	"github.com/exportmate/exportmate/internal/store"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
	WebDir       string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	conversation *service.ConversationService,
	ui *service.UIService,
	sessionStore *store.SessionStore,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Web UI build, when present
	SetupStaticRoutes(r, cfg.WebDir)

	chatHandler := chat.NewHandler(conversation, ui, sessionStore)
	sessionsHandler := sessions.NewHandler(sessionStore)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.Auth(cfg.APIKey))

	apiGroup.GET("/config", chatHandler.Config)
	apiGroup.GET("/stats", chatHandler.Stats)

	chatGroup := apiGroup.Group("/chat")
	chatHandler.RegisterRoutes(chatGroup)

	sessionGroup := apiGroup.Group("/sessions")
	sessionsHandler.RegisterRoutes(sessionGroup)

	return r
}
