package graph

import (
	"context"
	"fmt"

	"github.com/sreevatsan/storysmith/internal/tools"
	"github.com/sreevatsan/storysmith/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Executor resolves tool calls against a registry. Resolution failures are
// not faults: an unknown tool name or a tool error becomes an error-text
// ToolResult so the model can see the failure and react on the next turn.
type Executor struct {
	registry   *tools.Registry
	sequential bool
	logger     *zap.Logger
}

// ExecutorConfig holds executor configuration.
type ExecutorConfig struct {
	Registry *tools.Registry

	// Sequential resolves one call before the next is issued. The default is
	// concurrent resolution of all calls in one assistant turn.
	Sequential bool

	Logger *zap.Logger
}

// NewExecutor creates a tool executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Executor{
		registry:   cfg.Registry,
		sequential: cfg.Sequential,
		logger:     cfg.Logger,
	}
}

// Execute resolves every pending call and returns one tool-role message per
// call. Results are ordered by request order regardless of execution
// concurrency, and each carries the call identifier it answers.
func (e *Executor) Execute(ctx context.Context, calls []types.ToolCall) []types.Message {
	results := make([]types.Message, len(calls))

	if e.sequential || len(calls) == 1 {
		for i, call := range calls {
			results[i] = e.resolve(ctx, call)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = e.resolve(gctx, call)
			return nil
		})
	}
	// Workers never return errors; failures are carried in the results.
	_ = g.Wait()
	return results
}

func (e *Executor) resolve(ctx context.Context, call types.ToolCall) types.Message {
	e.logger.Info("Executing tool",
		zap.String("name", call.Name),
		zap.String("call_id", call.ID),
		zap.Any("arguments", call.Arguments))

	output, err := e.registry.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		e.logger.Warn("Tool call failed",
			zap.String("name", call.Name),
			zap.Error(err))
		return types.ToolMessage(call.Name, types.ToolResult{
			CallID:  call.ID,
			Content: fmt.Sprintf("Error: %v", err),
			IsError: true,
		})
	}

	return types.ToolMessage(call.Name, types.ToolResult{
		CallID:  call.ID,
		Content: output,
	})
}
