package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/config"
	"github.com/sreevatsan/storysmith/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		dir, err := config.Dir()
		if err == nil {
			printer.Info("Config dir: " + dir)
		}

		printer.Header("hub")
		fmt.Printf("  url:     %s\n", cfg.Hub.URL)
		fmt.Printf("  api_key: %s\n", maskKey(cfg.Hub.APIKey))

		printer.Header("llm")
		fmt.Printf("  base_url:        %s\n", cfg.LLM.BaseURL)
		fmt.Printf("  api_key:         %s\n", maskKey(cfg.LLM.APIKey))
		fmt.Printf("  model:           %s\n", cfg.LLM.Model)
		fmt.Printf("  temperature:     %g\n", cfg.LLM.Temperature)
		fmt.Printf("  max_tokens:      %d\n", cfg.LLM.MaxTokens)
		fmt.Printf("  timeout_seconds: %d\n", cfg.LLM.TimeoutSeconds)

		printer.Header("agent")
		fmt.Printf("  parallel_tool_calls: %t\n", cfg.Agent.ParallelToolCalls)
		fmt.Printf("  system_prompt:       %s\n", cfg.Agent.SystemPrompt)

		printer.Header("eval")
		fmt.Printf("  max_concurrency: %d\n", cfg.Eval.MaxConcurrency)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a key into the config file",
	Long: `Writes a key into the config file under ~/.storysmith, creating it on
first use. Keys use dotted paths, e.g.:

  storysmith config set llm.model gpt-4o-mini
  storysmith config set agent.parallel_tool_calls true`,
	Args: cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		path, err := config.Set(args[0], args[1])
		if err != nil {
			return err
		}
		printer.Success(fmt.Sprintf("Set %s in %s", args[0], path))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
