package servecmder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/pkg/config"
	"github.com/papercomputeco/ollamachat/webchat"
)

const serveLongDesc string = `Serve the browser chat.

The page talks to the inference server through this process. Each browser
keeps its own preferences in cookies; the preferences file supplies the
defaults and is reloaded when it changes.

Examples:
  ollamachat serve
  ollamachat serve --listen 127.0.0.1:9000 --server http://gpu-box:11434`

const serveShortDesc string = "Serve the browser chat"

type serveCommander struct {
	flags   *prefsflags.Flags
	listen  string
	noWatch bool
}

func NewServeCmd(flags *prefsflags.Flags) *cobra.Command {
	cmder := &serveCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cmder.listenAddr())
			if err != nil {
				return fmt.Errorf("could not listen: %w", err)
			}
			return cmder.run(ctx, cmd, ln)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default: preferences file, or :8080)")
	cmd.Flags().BoolVar(&cmder.noWatch, "no-watch", false, "Do not reload the preferences file when it changes")

	return cmd
}

func (c *serveCommander) listenAddr() string {
	if c.listen != "" {
		return c.listen
	}
	prefs, err := c.flags.Preferences()
	if err != nil || prefs.ListenAddr == "" {
		return config.DefaultListenAddr
	}
	return prefs.ListenAddr
}

// run serves on ln until ctx is done.
func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command, ln net.Listener) error {
	prefs, err := c.flags.Preferences()
	if err != nil {
		ln.Close()
		return err
	}

	log := c.flags.Logger(cmd.OutOrStdout())
	defer log.Sync()

	server, err := webchat.New(webchat.Config{
		ListenAddr:  ln.Addr().String(),
		Preferences: prefs,
	}, prefsflags.Client(prefs, log), log)
	if err != nil {
		ln.Close()
		return fmt.Errorf("could not create web chat: %w", err)
	}

	if !c.noWatch {
		path, err := c.flags.ResolveConfigPath()
		if err == nil {
			go c.watch(ctx, path, server, log)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.RunWithListener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down web chat")
		if err := server.Shutdown(); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	}
}

// watch applies preference file changes. A --server flag keeps precedence
// over the file.
func (c *serveCommander) watch(ctx context.Context, path string, server *webchat.Server, log *zap.Logger) {
	err := config.Watch(ctx, path, log, func(prefs config.Preferences) {
		if c.flags.Server != "" {
			prefs.Server = c.flags.Server
		}
		server.SetPreferences(prefs)
	})
	if err != nil {
		log.Warn("preferences will not be reloaded", zap.String("path", path), zap.Error(err))
	}
}
