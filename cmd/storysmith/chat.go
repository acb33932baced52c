package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/graph"
	"github.com/sreevatsan/storysmith/internal/llm"
	"github.com/sreevatsan/storysmith/internal/tools"
	"github.com/sreevatsan/storysmith/internal/types"
	"github.com/sreevatsan/storysmith/internal/ui"
)

var (
	chatInteractive bool
	chatThread      string
	sequentialTools bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [query]",
	Short: "Run the arithmetic tool-calling agent",
	Long: `Runs the agent loop with the add, multiply and divide tools bound.
The model decides when to call tools; the loop continues until it answers
without pending tool calls.

One-shot:     storysmith chat "Add 3 and 4"
Interactive:  storysmith chat --it
Threaded:     storysmith chat --thread 1 "Add 3 and 4"
              storysmith chat --thread 1 "Multiply the output by 2"`,

	RunE: func(cmd *cobra.Command, args []string) error {
		runner, registry, err := buildAgent()
		if err != nil {
			return err
		}

		if chatInteractive {
			return runInteractive(runner, registry)
		}
		if len(args) > 0 {
			return runOneShot(runner, strings.Join(args, " "))
		}
		return cmd.Help()
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatInteractive, "it", false, "Start interactive mode")
	chatCmd.Flags().StringVar(&chatThread, "thread", "", "Thread id for conversation memory")
	chatCmd.Flags().BoolVar(&sequentialTools, "sequential-tools", false,
		"Resolve tool calls one at a time (overrides config)")
}

// memory persists chat threads for the life of the process. One-shot runs
// with --thread share it through successive interactive turns only; state is
// not written to disk.
var memory = graph.NewMemorySaver()

func buildAgent() (*graph.Runner, *tools.Registry, error) {
	registry, err := tools.NewRegistry(tools.Arithmetic()...)
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}

	parallel := cfg.Agent.ParallelToolCalls
	if sequentialTools {
		parallel = false
	}

	client := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	bound := client.BindTools(registry.Definitions(), parallel)

	executor := graph.NewExecutor(graph.ExecutorConfig{
		Registry:   registry,
		Sequential: !parallel,
		Logger:     logger,
	})

	runner, err := graph.NewRunner(graph.RunnerConfig{
		Model:        bound,
		Executor:     executor,
		SystemPrompt: cfg.Agent.SystemPrompt,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return runner, registry, nil
}

func runOneShot(runner *graph.Runner, query string) error {
	printer := ui.NewPrinter()

	history := memory.Get(chatThread)
	history = append(history, types.HumanMessage(query))

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	result, err := runner.Run(ctx, history)
	if err != nil {
		printer.Errorf("%v", err)
		return err
	}

	if chatThread != "" {
		memory.Put(chatThread, result)
	}

	printer.History(result)
	return nil
}

func runInteractive(runner *graph.Runner, registry *tools.Registry) error {
	thread := chatThread
	if thread == "" {
		thread = "default"
	}

	runQuery := func(query string) tea.Cmd {
		return func() tea.Msg {
			history := memory.Get(thread)
			history = append(history, types.HumanMessage(query))

			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			result, err := runner.Run(ctx, history)
			if err != nil {
				return ui.RunResult{Err: err}
			}
			memory.Put(thread, result)
			return ui.RunResult{Appended: result[len(history):]}
		}
	}

	model := ui.NewModel(runQuery, registry.List())
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}
