// Package mcp provides an MCP (Model Context Protocol) server exposing
// walkstat simulations as tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/walkstat/internal/config"
	"github.com/nvandessel/walkstat/internal/logging"
	"github.com/nvandessel/walkstat/internal/random"
	"github.com/nvandessel/walkstat/internal/ratelimit"
)

// Server wraps the MCP SDK server and provides walkstat tools.
type Server struct {
	server       *sdk.Server
	cfg          *config.WalkstatConfig
	toolLimiters ratelimit.ToolLimiters
	logger       *slog.Logger
	runs         *logging.RunLogger
	newSeed      func() (int64, error)
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "walkstat")
	Version string // Server version

	// Settings supplies defaults and request limits. Nil uses config.Default().
	Settings *config.WalkstatConfig

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// Runs records every simulation. Nil disables run logging.
	Runs *logging.RunLogger
}

// NewServer creates a new MCP server with walkstat tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		cfg:          settings,
		toolLimiters: ratelimit.NewToolLimiters(),
		logger:       logger,
		runs:         cfg.Runs,
		newSeed:      random.NewSeed,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	return s.Serve(ctx, &sdk.StdioTransport{})
}

// Serve runs the server on an arbitrary transport until the session ends or
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context, t sdk.Transport) error {
	s.logger.Info("mcp server starting")
	err := s.server.Run(ctx, t)
	s.logger.Info("mcp server stopped")
	return err
}
