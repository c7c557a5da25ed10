package domain

// UIConfig holds presentation configuration served to the web frontend
type UIConfig struct {
	Theme          string `json:"theme"`
	PrimaryColor   string `json:"primary_color"`
	WelcomeMessage string `json:"welcome_message"`
	Placeholder    string `json:"placeholder"`
	DefaultTitle   string `json:"default_title"`
}

// DefaultUIConfig returns default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Theme:          "light",
		PrimaryColor:   "#3b82f6",
		WelcomeMessage: "Hi! Enter the product or sector you want to export (e.g. \"Olive oil\", \"Furniture\", \"Textile\") and I will suggest the best target countries.",
		Placeholder:    "Enter the product you want to export...",
		DefaultTitle:   "New Chat",
	}
}
