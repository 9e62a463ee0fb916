package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roomie-match/matchcore/internal/domain"
)

// ListQueueInput takes no parameters; the tool always returns the full
// live queue (spec §4.4 "queue sizes are O(10^4)").
type ListQueueInput struct{}

type ListQueueOutput struct {
	Entries []domain.QueueEntry `json:"entries"`
	Count   int                 `json:"count"`
}

func (s *Server) handleListQueue(ctx context.Context, req *sdk.CallToolRequest, args ListQueueInput) (*sdk.CallToolResult, ListQueueOutput, error) {
	keys, err := s.cache.Keys(ctx, domain.QueuePrefix+"*")
	if err != nil {
		return nil, ListQueueOutput{}, fmt.Errorf("list queue: %w", err)
	}
	entries, err := decodeAll[domain.QueueEntry](ctx, s.cache, keys)
	if err != nil {
		return nil, ListQueueOutput{}, err
	}
	return nil, ListQueueOutput{Entries: entries, Count: len(entries)}, nil
}

type ListEdgesInput struct{}

type ListEdgesOutput struct {
	Edges []domain.Edge `json:"edges"`
	Count int           `json:"count"`
}

func (s *Server) handleListEdges(ctx context.Context, req *sdk.CallToolRequest, args ListEdgesInput) (*sdk.CallToolResult, ListEdgesOutput, error) {
	keys, err := s.cache.Keys(ctx, domain.EdgePrefix+"*")
	if err != nil {
		return nil, ListEdgesOutput{}, fmt.Errorf("list edges: %w", err)
	}
	edges, err := decodeAll[domain.Edge](ctx, s.cache, keys)
	if err != nil {
		return nil, ListEdgesOutput{}, err
	}
	return nil, ListEdgesOutput{Edges: edges, Count: len(edges)}, nil
}

type ListMatchHistoryInput struct {
	Limit int `json:"limit,omitempty"`
}

type ListMatchHistoryOutput struct {
	Matches []domain.MatchHistoryRow `json:"matches"`
	Count   int                      `json:"count"`
}

func (s *Server) handleListMatchHistory(ctx context.Context, req *sdk.CallToolRequest, args ListMatchHistoryInput) (*sdk.CallToolResult, ListMatchHistoryOutput, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.store.ListMatchHistory(ctx, limit)
	if err != nil {
		return nil, ListMatchHistoryOutput{}, fmt.Errorf("list match history: %w", err)
	}
	return nil, ListMatchHistoryOutput{Matches: rows, Count: len(rows)}, nil
}

func decodeAll[T any](ctx context.Context, c interface {
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
}, keys []string) ([]T, error) {
	values, err := c.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, fmt.Errorf("decode cache entry: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}
