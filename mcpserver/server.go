// Package mcpserver exposes the ollama client as Model Context Protocol tools,
// so agents can generate text and list models on the configured server.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
)

// Tool names
const (
	ToolGenerate       = "generate"
	ToolListModels     = "list_models"
	ToolDefaultOptions = "default_options"
)

// Server is an MCP server backed by an ollama client.
type Server struct {
	client *ollama.Client
	logger *zap.Logger
	server *mcp.Server
}

// New creates an MCP server with the generate, list_models and
// default_options tools registered.
func New(client *ollama.Client, logger *zap.Logger, version string) *Server {
	s := &Server{
		client: client,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{Name: "ollamachat", Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGenerate,
		Description: "Generate a reply from a local LLM. Pass prior turns in messages to continue a conversation.",
	}, s.generate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListModels,
		Description: "List the models available on the LLM server. An empty list means the server is unreachable.",
	}, s.listModels)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolDefaultOptions,
		Description: "Return the default sampling options accepted by the generate tool.",
	}, s.defaultOptions)

	return s
}

// Run serves MCP over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", zap.String("server", s.client.Server()))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GenerateInput is the generate tool's input.
type GenerateInput struct {
	Prompt       string         `json:"prompt" jsonschema:"the user prompt"`
	SystemPrompt string         `json:"system,omitempty" jsonschema:"optional system prompt"`
	Model        string         `json:"model,omitempty" jsonschema:"model name, defaults to the server's text or image model"`
	Messages     []llm.Message  `json:"messages,omitempty" jsonschema:"prior conversation turns; when present chat mode is used"`
	Images       []string       `json:"images,omitempty" jsonschema:"data URLs, file paths or http(s) URLs of images"`
	Options      map[string]any `json:"options,omitempty" jsonschema:"model sampling parameters such as temperature"`
}

// GenerateOutput is the generate tool's output.
type GenerateOutput struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
	Mode  string `json:"mode"`
}

func (s *Server) generate(ctx context.Context, req *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	model := s.client.ResolveModel(in.Model, len(in.Images) > 0)

	result, err := s.client.Generate(ctx, in.Prompt, ollama.GenerateOptions{
		SystemPrompt: in.SystemPrompt,
		Messages:     in.Messages,
		Images:       in.Images,
		Model:        model,
		Options:      in.Options,
		KeepHTML:     true,
	})
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	return nil, GenerateOutput{
		Reply: result.Text,
		Model: model,
		Mode:  result.Mode.String(),
	}, nil
}

// ListModelsOutput is the list_models tool's output.
type ListModelsOutput struct {
	Connected bool     `json:"connected"`
	Models    []string `json:"models"`
}

func (s *Server) listModels(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ListModelsOutput, error) {
	models := s.client.Models(ctx, nil)

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return nil, ListModelsOutput{Connected: len(names) > 0, Models: names}, nil
}

// DefaultOptionsOutput is the default_options tool's output.
type DefaultOptionsOutput struct {
	Options map[string]any `json:"options"`
}

func (s *Server) defaultOptions(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DefaultOptionsOutput, error) {
	return nil, DefaultOptionsOutput{Options: s.client.DefaultOptions()}, nil
}
