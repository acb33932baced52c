package graph

import (
	"context"
	"fmt"

	"github.com/sreevatsan/storysmith/internal/types"
	"go.uber.org/zap"
)

// ChatModel is the single operation the agent node needs from a model. The
// llm.Client satisfies it once tools are bound.
type ChatModel interface {
	Chat(ctx context.Context, history []types.Message) (types.Message, error)
}

// Runner drives the agent loop over a history until the model answers
// without pending tool calls.
type Runner struct {
	model    ChatModel
	executor *Executor
	system   string
	logger   *zap.Logger
}

// RunnerConfig holds runner configuration.
type RunnerConfig struct {
	Model    ChatModel
	Executor *Executor

	// SystemPrompt is prepended to every model invocation but never stored
	// in the history itself.
	SystemPrompt string

	Logger *zap.Logger
}

// NewRunner creates an agent loop runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("runner requires a model")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("runner requires an executor")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{
		model:    cfg.Model,
		executor: cfg.Executor,
		system:   cfg.SystemPrompt,
		logger:   cfg.Logger,
	}, nil
}

// Run executes the loop starting from the agent node and returns the full
// history, ending with a terminal assistant message. The history argument is
// not mutated; the returned slice is owned by the caller.
//
// The loop has no iteration cap: termination relies on the model eventually
// responding without tool calls.
func (r *Runner) Run(ctx context.Context, history []types.Message) ([]types.Message, error) {
	run := make([]types.Message, len(history))
	copy(run, history)

	node := NodeAgent
	for node != NodeEnd {
		switch node {
		case NodeAgent:
			response, err := r.model.Chat(ctx, r.withSystem(run))
			if err != nil {
				return nil, fmt.Errorf("model invocation failed: %w", err)
			}
			run = append(run, response)

			next, err := Route(run)
			if err != nil {
				return nil, err
			}
			r.logger.Debug("Routed",
				zap.String("next", next.String()),
				zap.Int("tool_calls", len(response.ToolCalls)))
			node = next

		case NodeTools:
			last := run[len(run)-1]
			results := r.executor.Execute(ctx, last.ToolCalls)
			run = append(run, results...)
			node = NodeAgent
		}
	}
	return run, nil
}

func (r *Runner) withSystem(history []types.Message) []types.Message {
	if r.system == "" {
		return history
	}
	msgs := make([]types.Message, 0, len(history)+1)
	msgs = append(msgs, types.SystemMessage(r.system))
	return append(msgs, history...)
}
