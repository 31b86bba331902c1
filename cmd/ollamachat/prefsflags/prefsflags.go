// Package prefsflags holds the flags shared by every ollamachat command and
// resolves them against the preferences file.
package prefsflags

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/pkg/config"
	"github.com/papercomputeco/ollamachat/pkg/logger"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
)

// Flags are the persistent root flags.
type Flags struct {
	ConfigPath string
	Server     string
	Debug      bool
}

// Register adds the flags to cmd as persistent flags.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to the preferences file (default: user config dir)")
	cmd.PersistentFlags().StringVarP(&f.Server, "server", "s", "", "Inference server URL, overrides the preferences file")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// ResolveConfigPath returns --config, or the default preferences location.
func (f *Flags) ResolveConfigPath() (string, error) {
	if f.ConfigPath != "" {
		return f.ConfigPath, nil
	}
	return config.DefaultPath()
}

// Preferences loads the preferences file and applies flag overrides.
func (f *Flags) Preferences() (config.Preferences, error) {
	path, err := f.ResolveConfigPath()
	if err != nil {
		return config.Preferences{}, err
	}

	prefs, err := config.Load(path)
	if err != nil {
		return config.Preferences{}, err
	}

	if f.Server != "" {
		prefs.Server = f.Server
	}
	return prefs, nil
}

// Logger returns a logger writing to w. Commands whose stdout carries their
// own output pass stderr.
func (f *Flags) Logger(w io.Writer) *zap.Logger {
	return logger.NewLoggerTo(w, f.Debug)
}

// Client returns a client for the preferred server, using the preferred model
// as the text default.
func Client(prefs config.Preferences, log *zap.Logger) *ollama.Client {
	return ollama.New(prefs.Server, log, ollama.WithDefaultModels(prefs.Model, ""))
}
