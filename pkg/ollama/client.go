package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/logger"
)

// maxResponseSize bounds a decoded response body (16 MB).
const maxResponseSize = 16 << 20

// Client talks to a single Ollama server. The server address may be changed
// at any time with SetServer; a call captures the address when it is issued.
//
// Calls are independent: the client does no queuing, de-duplication or retry.
type Client struct {
	mu     sync.RWMutex
	server string

	textModel  string
	imageModel string

	httpClient *http.Client
	images     *ImageEncoder
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls and image fetches.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithDefaultModels overrides the models used when a call names none.
// Empty values keep the built-in defaults.
func WithDefaultModels(text, image string) Option {
	return func(c *Client) {
		if text != "" {
			c.textModel = text
		}
		if image != "" {
			c.imageModel = image
		}
	}
}

// New creates a client for server. An empty server selects DefaultServer.
func New(server string, log *zap.Logger, opts ...Option) *Client {
	if server == "" {
		server = DefaultServer
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		server:     server,
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.images = NewImageEncoder(c.httpClient)

	return c
}

// SetServer replaces the server base address. The address is not validated.
// It takes effect for calls issued after SetServer returns.
func (c *Client) SetServer(server string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.server = server
}

// Server returns the current server base address.
func (c *Client) Server() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.server
}

// WithServer returns a client for another server address that shares this
// client's transport, default models and logger. c is not modified.
func (c *Client) WithServer(server string) *Client {
	return &Client{
		server:     server,
		textModel:  c.textModel,
		imageModel: c.imageModel,
		httpClient: c.httpClient,
		images:     c.images,
		logger:     c.logger,
	}
}

// DefaultOptions returns the default sampling parameters. No I/O is performed.
func (c *Client) DefaultOptions() llm.Options {
	return llm.DefaultOptions()
}

// ResolveModel returns model when set, otherwise the image default when the
// call carries images and the text default when it does not.
func (c *Client) ResolveModel(model string, hasImages bool) string {
	if model != "" {
		return model
	}
	if hasImages {
		return c.imageModel
	}
	return c.textModel
}

// Generate sends prompt to the server and returns the normalized reply.
//
// Chat mode is used when opts.Messages is non-empty, generate mode otherwise.
// All image references are embedded before the request is sent.
//
// On any failure (empty prompt, image encoding, transport, malformed body or
// a server-reported error) the failure is logged, opts.Callback receives
// Failed, and Failed is returned with an error wrapping ErrGenerationFailed.
// On success the callback receives the same Result that is returned.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (Result, error) {
	log := c.logger.With(zap.String("request_id", uuid.NewString()))

	if prompt == "" {
		return c.fail(log, opts.Callback, ErrEmptyPrompt)
	}

	mode := opts.mode()
	model := c.ResolveModel(opts.Model, len(opts.Images) > 0)
	server := c.Server()

	images, err := c.images.EncodeAll(ctx, opts.Images)
	if err != nil {
		return c.fail(log, opts.Callback, fmt.Errorf("%w: %w", ErrImageEncoding, err))
	}

	payload := buildRequest(mode, model, prompt, opts, images)
	url := server + mode.endpoint()

	log.Debug("sending generate request",
		zap.String("url", url),
		zap.Stringer("mode", mode),
		zap.String("model", model),
		zap.Int("message_count", len(opts.Messages)),
		zap.Int("image_count", len(images)),
		zap.Bool("stream", opts.Stream),
	)

	body, err := c.post(ctx, url, payload)
	if err != nil {
		return c.fail(log, opts.Callback, err)
	}

	result, err := shapeResult(mode, body, opts)
	if err != nil {
		return c.fail(log, opts.Callback, err)
	}

	log.Debug("received reply",
		zap.Stringer("mode", mode),
		zap.String("content_preview", logger.Preview(result.Text, 100)),
	)

	if opts.Callback != nil {
		opts.Callback(result)
	}
	return result, nil
}

// fail logs err, delivers Failed to callback and returns the failure contract.
func (c *Client) fail(log *zap.Logger, callback func(Result), err error) (Result, error) {
	log.Error("generate failed", zap.Error(err))
	if callback != nil {
		callback(Failed)
	}
	return Failed, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

// post sends payload as JSON and returns the raw response body. A non-2xx
// status carrying an error body is reported as ErrServer.
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var errResp llm.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrServer, errResp.Error)
		}
		return nil, fmt.Errorf("server returned %d: %s", httpResp.StatusCode, logger.Preview(string(body), 200))
	}

	return body, nil
}

// Models lists the models available on the server, sorted by name. Any
// failure yields an empty slice, which makes the call usable as a
// connectivity check. callback, when set, receives the same slice.
func (c *Client) Models(ctx context.Context, callback func([]llm.ModelInfo)) []llm.ModelInfo {
	models, err := c.listModels(ctx)
	if err != nil {
		c.logger.Warn("no models loaded", zap.String("server", c.Server()), zap.Error(err))
		models = []llm.ModelInfo{}
	}

	if callback != nil {
		callback(models)
	}
	return models
}

func (c *Client) listModels(ctx context.Context) ([]llm.ModelInfo, error) {
	url := c.Server() + EndpointTags

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var tags llm.TagsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tags.Models == nil {
		return nil, errors.New("response carries no model list")
	}

	sort.SliceStable(tags.Models, func(i, j int) bool {
		return tags.Models[i].Name < tags.Models[j].Name
	})
	return tags.Models, nil
}
