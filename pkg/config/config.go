// Package config loads and stores the user preferences shared by the chat
// surfaces: server address, model, system prompt and speech settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Preference keys. The same keys name the web chat cookies.
const (
	KeyServer       = "server"
	KeyModel        = "model"
	KeySystemPrompt = "systemprompt"
	KeyTTS          = "tts"
	KeyTTSVoice     = "ttsvoice"
	KeyTTSRate      = "ttsrate"
)

// Keys lists every preference key in display order.
var Keys = []string{KeyServer, KeyModel, KeySystemPrompt, KeyTTS, KeyTTSVoice, KeyTTSRate}

// Default preference values
const (
	DefaultServer       = "http://127.0.0.1:11434"
	DefaultSystemPrompt = "You tell stories about blue robots on Mars"
	DefaultTTSRate      = 1.0
	DefaultListenAddr   = ":8080"
)

// Preferences are the persisted user settings.
type Preferences struct {
	// Server is the inference server base URL (e.g., "http://127.0.0.1:11434")
	Server string `toml:"server"`

	// Model is the preferred model. Empty lets the client pick its default.
	Model string `toml:"model"`

	SystemPrompt string `toml:"systemprompt"`

	// Speech settings, used by the browser chat
	TTS      bool    `toml:"tts"`
	TTSVoice string  `toml:"ttsvoice"`
	TTSRate  float64 `toml:"ttsrate"` // 0.1 - 10

	// ListenAddr is the web chat listen address (e.g., ":8080")
	ListenAddr string `toml:"listen"`
}

// Defaults returns the preferences used when nothing has been stored.
func Defaults() Preferences {
	return Preferences{
		Server:       DefaultServer,
		SystemPrompt: DefaultSystemPrompt,
		TTS:          true,
		TTSRate:      DefaultTTSRate,
		ListenAddr:   DefaultListenAddr,
	}
}

// DefaultPath returns the preferences file location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve config directory: %w", err)
	}
	return filepath.Join(dir, "ollamachat", "config.toml"), nil
}

// Load reads preferences from path. A missing file yields Defaults. Keys
// absent from the file keep their default values.
func Load(path string) (Preferences, error) {
	prefs := Defaults()

	if _, err := toml.DecodeFile(path, &prefs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("could not parse %s: %w", path, err)
	}

	prefs.normalize()
	return prefs, nil
}

// Save writes preferences to path, creating parent directories. The file is
// replaced atomically.
func Save(path string, prefs Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(prefs); err != nil {
		tmp.Close()
		return fmt.Errorf("could not encode preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write preferences: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not replace %s: %w", path, err)
	}
	return nil
}

// normalize restores defaults for values a file may have blanked out.
func (p *Preferences) normalize() {
	if p.Server == "" {
		p.Server = DefaultServer
	}
	if p.TTSRate <= 0 {
		p.TTSRate = DefaultTTSRate
	}
	if p.ListenAddr == "" {
		p.ListenAddr = DefaultListenAddr
	}
}

// Get returns the string form of the preference named key.
func (p Preferences) Get(key string) (string, error) {
	switch key {
	case KeyServer:
		return p.Server, nil
	case KeyModel:
		return p.Model, nil
	case KeySystemPrompt:
		return p.SystemPrompt, nil
	case KeyTTS:
		return strconv.FormatBool(p.TTS), nil
	case KeyTTSVoice:
		return p.TTSVoice, nil
	case KeyTTSRate:
		return strconv.FormatFloat(p.TTSRate, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unknown preference %q", key)
	}
}

// Set parses value into the preference named key.
func (p *Preferences) Set(key, value string) error {
	switch key {
	case KeyServer:
		p.Server = value
	case KeyModel:
		p.Model = value
	case KeySystemPrompt:
		p.SystemPrompt = value
	case KeyTTS:
		// Anything but an explicit "false" keeps speech enabled.
		p.TTS = value != "false"
	case KeyTTSVoice:
		p.TTSVoice = value
	case KeyTTSRate:
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", KeyTTSRate, value, err)
		}
		if rate < 0.1 || rate > 10 {
			return fmt.Errorf("%s %v out of range 0.1-10", KeyTTSRate, rate)
		}
		p.TTSRate = rate
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
	return nil
}

// Values returns every preference as a key/value map.
func (p Preferences) Values() map[string]string {
	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		values[key], _ = p.Get(key)
	}
	return values
}
