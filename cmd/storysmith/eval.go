package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/eval"
	"github.com/sreevatsan/storysmith/internal/llm"
	"github.com/sreevatsan/storysmith/internal/ui"
)

var (
	evalDataset     string
	evalPrompt      string
	evalPrefix      string
	evalConcurrency int
	evalStream      bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a stored prompt against a dataset",
	Long: `Pulls a prompt from the hub and runs every example of a dataset
through it, logging each interaction to the hub as an experiment. With
--stream the model is invoked in streaming mode so time to first token shows
up in the experiment; plain invocation cannot measure it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		hubClient, err := buildHub()
		if err != nil {
			return err
		}

		ctx := context.Background()

		prompt, err := hubClient.PullPrompt(ctx, evalPrompt, true)
		if err != nil {
			return fmt.Errorf("pull prompt: %w", err)
		}
		client := clientForPrompt(prompt)

		target := func(ctx context.Context, inputs map[string]string) (string, *llm.StreamStats, error) {
			history, err := prompt.Render(inputs)
			if err != nil {
				return "", nil, err
			}
			if evalStream {
				response, stats, err := client.Stream(ctx, history, nil)
				if err != nil {
					return "", nil, err
				}
				return response.Content, stats, nil
			}
			response, err := client.Chat(ctx, history)
			if err != nil {
				return "", nil, err
			}
			return response.Content, nil, nil
		}

		concurrency := evalConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Eval.MaxConcurrency
		}

		runner := eval.NewRunner(hubClient, logger)
		report, err := runner.Evaluate(ctx, target, eval.Options{
			DatasetName:      evalDataset,
			ExperimentPrefix: evalPrefix,
			MaxConcurrency:   concurrency,
		})
		if err != nil {
			return err
		}

		printer.Header("Experiment " + report.Experiment)
		for i, result := range report.Results {
			if result.Err != nil {
				printer.Errorf("example %d: %v", i+1, result.Err)
				continue
			}
			line := fmt.Sprintf("example %d: %s", i+1, result.Latency.Round(time.Millisecond))
			if result.TimeToFirstToken > 0 {
				line += fmt.Sprintf(" (first token %s)", result.TimeToFirstToken.Round(time.Millisecond))
			}
			printer.Success(line)
		}
		printer.Divider()
		printer.Info(fmt.Sprintf("%d examples, %d failed, total %s",
			len(report.Results), report.Failed, report.TotalDuration.Round(time.Millisecond)))
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVar(&evalDataset, "dataset", "story input", "Dataset name on the hub")
	evalCmd.Flags().StringVar(&evalPrompt, "prompt", "story-outline", "Prompt name on the hub")
	evalCmd.Flags().StringVar(&evalPrefix, "prefix", "story-outline-evaluation", "Experiment name prefix")
	evalCmd.Flags().IntVar(&evalConcurrency, "concurrency", 0, "Max concurrent examples (default from config)")
	evalCmd.Flags().BoolVar(&evalStream, "stream", false, "Invoke the model in streaming mode")
}
