package webchat

import (
	"github.com/papercomputeco/ollamachat/pkg/config"
)

// Config is the web chat server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Preferences seed the values a browser sees before it has stored any
	// cookies of its own.
	Preferences config.Preferences
}
