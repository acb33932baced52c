// Package eval runs a target function over a hub dataset and logs each
// interaction back to the hub as an experiment.
package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sreevatsan/storysmith/internal/hub"
	"github.com/sreevatsan/storysmith/internal/llm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Target is the function under evaluation. It receives one example's inputs
// and returns the generated output. Streaming targets also report stream
// stats so time to first token lands in the experiment; non-streaming
// targets return nil stats.
type Target func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error)

// HubClient is the slice of the hub API the runner needs.
type HubClient interface {
	ListExamples(ctx context.Context, datasetName string) ([]hub.Example, error)
	CreateRun(ctx context.Context, run hub.Run) error
}

// Options configures an evaluation.
type Options struct {
	DatasetName      string
	ExperimentPrefix string

	// MaxConcurrency bounds how many examples run at once. Zero or one means
	// strictly sequential.
	MaxConcurrency int
}

// Result is the outcome for one example, in dataset order.
type Result struct {
	Example          hub.Example
	Output           string
	Err              error
	Latency          time.Duration
	TimeToFirstToken time.Duration
}

// Report aggregates an experiment.
type Report struct {
	Experiment    string
	Results       []Result
	Failed        int
	TotalDuration time.Duration
}

// Runner executes evaluations.
type Runner struct {
	client HubClient
	logger *zap.Logger
}

// NewRunner creates an evaluation runner.
func NewRunner(client HubClient, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, logger: logger}
}

// Evaluate fetches the dataset's examples, runs the target over each with
// bounded concurrency, logs every run to the hub and returns a report whose
// results follow dataset order. A failing example does not abort the
// experiment; its error is recorded in the result.
func (r *Runner) Evaluate(ctx context.Context, target Target, opts Options) (*Report, error) {
	if opts.DatasetName == "" {
		return nil, fmt.Errorf("dataset name is required")
	}

	examples, err := r.client.ListExamples(ctx, opts.DatasetName)
	if err != nil {
		return nil, fmt.Errorf("list examples for %q: %w", opts.DatasetName, err)
	}

	experiment := experimentName(opts.ExperimentPrefix)
	r.logger.Info("Starting evaluation",
		zap.String("experiment", experiment),
		zap.String("dataset", opts.DatasetName),
		zap.Int("examples", len(examples)))

	start := time.Now()
	results := make([]Result, len(examples))

	g, gctx := errgroup.WithContext(ctx)
	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, example := range examples {
		g.Go(func() error {
			results[i] = r.runOne(gctx, target, experiment, example)
			return nil
		})
	}
	// Workers record failures in their result slot instead of returning them.
	_ = g.Wait()

	report := &Report{
		Experiment:    experiment,
		Results:       results,
		TotalDuration: time.Since(start),
	}
	for _, res := range results {
		if res.Err != nil {
			report.Failed++
		}
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, target Target, experiment string, example hub.Example) Result {
	started := time.Now()
	output, stats, err := target(ctx, example.Inputs)

	result := Result{
		Example: example,
		Output:  output,
		Err:     err,
		Latency: time.Since(started),
	}
	if stats != nil {
		result.TimeToFirstToken = stats.TimeToFirstToken
	}

	run := hub.Run{
		Experiment:       experiment,
		ExampleID:        example.ID,
		Inputs:           example.Inputs,
		Output:           output,
		Latency:          result.Latency,
		TimeToFirstToken: result.TimeToFirstToken,
	}
	if err != nil {
		run.Error = err.Error()
	}

	// Logging the run is best effort; a hub hiccup should not fail the
	// evaluation itself.
	if err := r.client.CreateRun(ctx, run); err != nil {
		r.logger.Warn("Failed to log run",
			zap.String("experiment", experiment),
			zap.String("example_id", example.ID),
			zap.Error(err))
	}
	return result
}

func experimentName(prefix string) string {
	if prefix == "" {
		prefix = "experiment"
	}
	return prefix + "-" + uuid.NewString()[:8]
}
