// Package mcp exposes a read-only Model Context Protocol server over the
// live matching state: the waiting queue, scored edges, and committed
// match history. It is an introspection surface, not a control plane —
// every tool here only reads.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/store"
)

// Server wraps the MCP SDK server with access to the cache and store the
// inspection tools read from.
type Server struct {
	server *sdk.Server
	cache  cache.Client
	store  store.Store
}

// Config holds server identity metadata.
type Config struct {
	Name    string
	Version string
}

// NewServer builds an MCP server with the queue/edges/history tools
// registered, backed by the given cache and store.
func NewServer(cfg *Config, c cache.Client, s store.Store) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	srv := &Server{server: mcpServer, cache: c, store: s}
	srv.registerTools()
	return srv, nil
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_queue",
		Description: "List candidates currently waiting in the matching queue",
	}, s.handleListQueue)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_edges",
		Description: "List cached pairwise compatibility edges",
	}, s.handleListEdges)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_match_history",
		Description: "List committed matches from the relational store",
	}, s.handleListMatchHistory)
}

// Run starts the MCP server over stdio transport, blocking until the
// client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
