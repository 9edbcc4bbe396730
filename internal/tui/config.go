package tui

import (
	"context"

	"github.com/Veraticus/thrift/internal/chat"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/tui/themes"
)

// ChatFunc answers a conversation whose last message is the user's turn.
type ChatFunc func(ctx context.Context, history []llm.Message) (chat.Reply, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Chat     ChatFunc
	UserName string
	Width    int
	Height   int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithUserName sets the label shown for the user's turns.
func WithUserName(name string) Option {
	return func(c *Config) {
		c.UserName = name
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
