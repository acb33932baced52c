package eval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sreevatsan/storysmith/internal/hub"
	"github.com/sreevatsan/storysmith/internal/llm"
)

type fakeHub struct {
	mu       sync.Mutex
	examples []hub.Example
	listErr  error
	runErr   error
	runs     []hub.Run
}

func (f *fakeHub) ListExamples(ctx context.Context, datasetName string) ([]hub.Example, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.examples, nil
}

func (f *fakeHub) CreateRun(ctx context.Context, run hub.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runErr != nil {
		return f.runErr
	}
	f.runs = append(f.runs, run)
	return nil
}

func storyExamples(n int) []hub.Example {
	examples := make([]hub.Example, n)
	for i := range examples {
		examples[i] = hub.Example{
			ID:     fmt.Sprintf("ex_%d", i),
			Inputs: map[string]string{"genre": fmt.Sprintf("genre-%d", i)},
		}
	}
	return examples
}

func TestEvaluatePreservesOrder(t *testing.T) {
	client := &fakeHub{examples: storyExamples(5)}
	runner := NewRunner(client, nil)

	// The first example is the slowest, so a concurrent run would finish it
	// last. Results must still come back in dataset order.
	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		if inputs["genre"] == "genre-0" {
			time.Sleep(20 * time.Millisecond)
		}
		return "outline for " + inputs["genre"], nil, nil
	}

	report, err := runner.Evaluate(context.Background(), target, Options{
		DatasetName:    "story input",
		MaxConcurrency: 4,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.Results) != 5 {
		t.Fatalf("got %d results, want 5", len(report.Results))
	}
	for i, res := range report.Results {
		want := fmt.Sprintf("outline for genre-%d", i)
		if res.Output != want {
			t.Errorf("result[%d].Output = %q, want %q", i, res.Output, want)
		}
	}
	if report.Failed != 0 {
		t.Errorf("Failed = %d, want 0", report.Failed)
	}
}

func TestEvaluateFailureDoesNotAbort(t *testing.T) {
	client := &fakeHub{examples: storyExamples(3)}
	runner := NewRunner(client, nil)

	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		if inputs["genre"] == "genre-1" {
			return "", nil, fmt.Errorf("model refused")
		}
		return "ok", nil, nil
	}

	report, err := runner.Evaluate(context.Background(), target, Options{DatasetName: "story input"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if report.Results[1].Err == nil {
		t.Error("failing example should record its error")
	}
	if report.Results[0].Err != nil || report.Results[2].Err != nil {
		t.Error("healthy examples should not record errors")
	}
}

func TestEvaluateLogsEveryRun(t *testing.T) {
	client := &fakeHub{examples: storyExamples(3)}
	runner := NewRunner(client, nil)

	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		if inputs["genre"] == "genre-2" {
			return "", nil, fmt.Errorf("boom")
		}
		return "ok", &llm.StreamStats{}, nil
	}

	report, err := runner.Evaluate(context.Background(), target, Options{
		DatasetName:      "story input",
		ExperimentPrefix: "story-outline-evaluation",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(client.runs) != 3 {
		t.Fatalf("logged %d runs, want 3", len(client.runs))
	}
	for _, run := range client.runs {
		if run.Experiment != report.Experiment {
			t.Errorf("run experiment = %q, want %q", run.Experiment, report.Experiment)
		}
	}

	var failed int
	for _, run := range client.runs {
		if run.Error != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("logged %d failed runs, want 1", failed)
	}
}

func TestEvaluateRunLoggingIsBestEffort(t *testing.T) {
	client := &fakeHub{
		examples: storyExamples(2),
		runErr:   fmt.Errorf("hub unavailable"),
	}
	runner := NewRunner(client, nil)

	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		return "ok", nil, nil
	}

	report, err := runner.Evaluate(context.Background(), target, Options{DatasetName: "story input"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Failed != 0 {
		t.Errorf("Failed = %d, hub logging errors must not fail examples", report.Failed)
	}
}

func TestEvaluateExperimentName(t *testing.T) {
	client := &fakeHub{examples: storyExamples(1)}
	runner := NewRunner(client, nil)
	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		return "ok", nil, nil
	}

	report, err := runner.Evaluate(context.Background(), target, Options{
		DatasetName:      "story input",
		ExperimentPrefix: "story-outline-evaluation",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !strings.HasPrefix(report.Experiment, "story-outline-evaluation-") {
		t.Errorf("experiment = %q, want prefix %q", report.Experiment, "story-outline-evaluation-")
	}
	if len(report.Experiment) <= len("story-outline-evaluation-") {
		t.Error("experiment name should carry a unique suffix")
	}
}

func TestEvaluateRequiresDataset(t *testing.T) {
	runner := NewRunner(&fakeHub{}, nil)
	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		return "", nil, nil
	}

	if _, err := runner.Evaluate(context.Background(), target, Options{}); err == nil {
		t.Error("expected error for empty dataset name")
	}
}

func TestEvaluateListFailureIsFatal(t *testing.T) {
	client := &fakeHub{listErr: fmt.Errorf("dataset not found")}
	runner := NewRunner(client, nil)
	target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
		return "", nil, nil
	}

	if _, err := runner.Evaluate(context.Background(), target, Options{DatasetName: "missing"}); err == nil {
		t.Error("expected error when listing examples fails")
	}
}
