package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/prompts"
)

// GameMasterService turns a turn request into a validated Game Master reply
// using an LLM provider.
type GameMasterService struct {
	llm          LLMService
	historyLimit int
	logger       *slog.Logger
}

// NewGameMasterService wraps an LLM provider.
func NewGameMasterService(llm LLMService, historyLimit int, logger *slog.Logger) *GameMasterService {
	if historyLimit <= 0 {
		historyLimit = chat.DefaultHistoryLimit
	}
	return &GameMasterService{
		llm:          llm,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Respond builds the prompt, calls the provider and parses the reply.
// Transport and parse failures are returned as errors; the caller decides
// how to surface them.
func (g *GameMasterService) Respond(ctx context.Context, req *gm.Request) (*gm.Response, error) {
	builder := prompts.New().
		WithRequest(req).
		WithHistoryLimit(g.historyLimit)
	if so, ok := g.llm.(StructuredOutput); !ok || !so.SupportsResponseSchema() {
		builder = builder.WithResponseFormat()
	}

	messages, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	start := time.Now()
	raw, err := g.llm.GenerateGMResponse(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	resp, err := gm.Parse(raw)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("Discarding malformed Game Master reply",
				"error", err,
				"raw_length", len(raw))
		}
		return nil, err
	}

	if g.logger != nil {
		g.logger.Debug("Game Master reply parsed",
			"duration", time.Since(start),
			"check_requested", resp.CheckRequest != nil,
			"state_changes", resp.HasStateChanges())
	}
	return resp, nil
}
