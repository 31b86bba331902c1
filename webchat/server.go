// Package webchat serves the browser chat page and the JSON endpoints it uses
// to talk to an Ollama server through the ollama client.
//
// The server keeps no conversation state: the page owns its transcript and
// sends it with every message. Per-browser preferences live in cookies.
package webchat

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/pkg/config"
	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/logger"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
	"github.com/papercomputeco/ollamachat/pkg/render"
)

// Server is the web chat HTTP server.
type Server struct {
	config Config
	client *ollama.Client
	logger *zap.Logger
	server *fiber.App

	mu    sync.RWMutex
	prefs config.Preferences
}

// New creates a new Server that sends generate calls through client.
func New(cfg Config, client *ollama.Client, logger *zap.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.New("webchat: nil client")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config: cfg,
		client: client,
		logger: logger,
		server: app,
		prefs:  cfg.Preferences,
	}
	s.routes(app)

	return s, nil
}

func (s *Server) routes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/chat/preferences", s.handleGetPreferences)
	app.Put("/chat/preferences", s.handlePutPreferences)
	app.Get("/chat/models", s.handleModels)
	app.Get("/chat/options", s.handleOptions)
	app.Post("/chat/send", s.handleSend)

	// Chat page and its assets
	app.Get("/*", adaptor.HTTPHandler(http.FileServer(http.FS(staticFS()))))
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting web chat",
		zap.String("listen", s.config.ListenAddr),
		zap.String("server", s.client.Server()),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting web chat",
		zap.String("listen", ln.Addr().String()),
		zap.String("server", s.client.Server()),
	)

	return s.server.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}

// Preferences returns the server-side default preferences.
func (s *Server) Preferences() config.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// SetPreferences replaces the server-side defaults and points the shared
// client at the new server address. Used when the preferences file changes.
func (s *Server) SetPreferences(prefs config.Preferences) {
	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()

	s.client.SetServer(prefs.Server)
	s.logger.Info("preferences applied", zap.String("server", prefs.Server))
}

// clientFor returns the client to use for this request. A browser that stored
// its own server address gets a request-scoped client for that address.
func (s *Server) clientFor(prefs config.Preferences) *ollama.Client {
	if prefs.Server == "" || prefs.Server == s.client.Server() {
		return s.client
	}
	return s.client.WithServer(prefs.Server)
}

// ModelsResponse is returned by GET /chat/models.
type ModelsResponse struct {
	// Connected is false when the server listed no models
	Connected bool     `json:"connected"`
	Models    []string `json:"models"`
}

// handleModels lists the model names available on the browser's server.
func (s *Server) handleModels(c *fiber.Ctx) error {
	client := s.clientFor(s.preferencesFromCookies(c))

	models := client.Models(c.UserContext(), nil)
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}

	return c.JSON(ModelsResponse{
		Connected: len(names) > 0,
		Models:    names,
	})
}

// handleOptions returns the default sampling options for the options form.
func (s *Server) handleOptions(c *fiber.Ctx) error {
	return c.JSON(s.client.DefaultOptions())
}

// SendRequest is the body of POST /chat/send.
type SendRequest struct {
	Prompt       string        `json:"prompt"`
	Messages     []llm.Message `json:"messages,omitempty"`
	Model        string        `json:"model,omitempty"`
	SystemPrompt string        `json:"systemprompt,omitempty"`
	Options      llm.Options   `json:"options,omitempty"`
	// Images must already be data URLs. References the server would have to
	// load itself (paths, file:// or http(s):// URLs) are rejected.
	Images       []string      `json:"images,omitempty"`
}

// SendResponse is the reply to POST /chat/send.
type SendResponse struct {
	// Reply is the escaped reply text, suitable for the transcript
	Reply string `json:"reply"`
	// HTML is Reply with line breaks and code blocks formatted
	HTML string `json:"html"`
	// Speech is the text to hand to speech synthesis, empty when there is nothing to say
	Speech string `json:"speech"`
	Model  string `json:"model"`
}

// handleSend generates a reply to the prompt. The page's transcript selects
// chat mode; an empty transcript uses generate mode.
func (s *Server) handleSend(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("no prompt provided"))
	}
	for _, ref := range req.Images {
		if !ollama.IsDataURL(ref) {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody("images must be data:image URLs"))
		}
	}

	prefs := s.preferencesFromCookies(c)
	client := s.clientFor(prefs)

	model := req.Model
	if model == "" {
		model = prefs.Model
	}
	model = client.ResolveModel(model, len(req.Images) > 0)

	s.logger.Debug("received chat message",
		zap.String("model", model),
		zap.Int("message_count", len(req.Messages)),
		zap.String("prompt_preview", logger.Preview(req.Prompt, 50)),
	)

	result, err := client.Generate(c.UserContext(), req.Prompt, ollama.GenerateOptions{
		SystemPrompt: req.SystemPrompt,
		Messages:     req.Messages,
		Images:       req.Images,
		Model:        model,
		Options:      req.Options,
	})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(errorBody("could not reach " + client.Server()))
	}

	return c.JSON(SendResponse{
		Reply:  result.Text,
		HTML:   render.FormatMessage(result.Text),
		Speech: render.SpeechText(result.Text),
		Model:  model,
	})
}

func errorBody(msg string) llm.ErrorResponse {
	return llm.ErrorResponse{Error: msg}
}
