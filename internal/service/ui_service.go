package service

import (
	"github.com/exportmate/exportmate/internal/config"
	"github.com/exportmate/exportmate/internal/domain"
)

// UIService hands presentation configuration to the web frontend
type UIService struct {
	cfg *config.Config
}

// NewUIService creates a new UI service
func NewUIService(cfg *config.Config) *UIService {
	return &UIService{cfg: cfg}
}

// UIConfig returns the frontend configuration, with config-file values
// layered over the defaults.
func (s *UIService) UIConfig() domain.UIConfig {
	ui := domain.DefaultUIConfig()
	if s.cfg.UI.Theme != "" {
		ui.Theme = s.cfg.UI.Theme
	}
	if s.cfg.UI.PrimaryColor != "" {
		ui.PrimaryColor = s.cfg.UI.PrimaryColor
	}
	if s.cfg.Chat.Greeting != "" {
		ui.WelcomeMessage = s.cfg.Chat.Greeting
	}
	if s.cfg.UI.Placeholder != "" {
		ui.Placeholder = s.cfg.UI.Placeholder
	}
	if s.cfg.Chat.DefaultTitle != "" {
		ui.DefaultTitle = s.cfg.Chat.DefaultTitle
	}
	return ui
}
