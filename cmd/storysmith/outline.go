package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/hub"
	"github.com/sreevatsan/storysmith/internal/llm"
	"github.com/sreevatsan/storysmith/internal/ui"
)

var (
	outlineGenre   string
	outlineContext string
	outlinePrompt  string
	outlineStream  bool
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Generate a story outline from a stored prompt",
	Long: `Pulls the story-outline prompt from the hub (with its stored model
configuration), renders it with the given genre and context, and invokes the
model. With --stream the response is printed token by token and time to first
token is reported.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		hubClient, err := buildHub()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		prompt, err := hubClient.PullPrompt(ctx, outlinePrompt, true)
		if err != nil {
			return fmt.Errorf("pull prompt: %w", err)
		}

		history, err := prompt.Render(map[string]string{
			"genre":   outlineGenre,
			"context": outlineContext,
		})
		if err != nil {
			return err
		}

		client := clientForPrompt(prompt)

		if outlineStream {
			printer.Header("STORY OUTLINE")
			_, stats, err := client.Stream(ctx, history, func(delta string) error {
				fmt.Print(delta)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Println()
			printer.Header("METADATA")
			printer.Info(fmt.Sprintf("model: %s", client.Model()))
			printer.Info(fmt.Sprintf("time to first token: %s", stats.TimeToFirstToken.Round(time.Millisecond)))
			printer.Info(fmt.Sprintf("total duration: %s", stats.TotalDuration.Round(time.Millisecond)))
			printer.Info(fmt.Sprintf("chunks: %d", stats.Chunks))
			return nil
		}

		response, err := client.Chat(ctx, history)
		if err != nil {
			return err
		}

		printer.Header("STORY OUTLINE")
		fmt.Println(response.Content)
		printer.Header("METADATA")
		printer.Info(fmt.Sprintf("model: %s", client.Model()))
		return nil
	},
}

func init() {
	outlineCmd.Flags().StringVar(&outlineGenre, "genre", "horror", "Story genre")
	outlineCmd.Flags().StringVar(&outlineContext, "context",
		"A group of friends go on a camping trip to a remote forested area.",
		"Story context or setting")
	outlineCmd.Flags().StringVar(&outlinePrompt, "prompt", "story-outline", "Prompt name on the hub")
	outlineCmd.Flags().BoolVar(&outlineStream, "stream", false, "Stream the response")
}

func buildHub() (*hub.Client, error) {
	client, err := hub.NewClient(hub.Config{
		BaseURL: cfg.Hub.URL,
		APIKey:  cfg.Hub.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("hub client: %w (set HUB_API_KEY or hub.api_key)", err)
	}
	return client, nil
}

// clientForPrompt builds a chat client, preferring the model configuration
// stored with the prompt over the local defaults.
func clientForPrompt(prompt *hub.Prompt) *llm.Client {
	clientCfg := llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}
	if prompt.Model != nil {
		if prompt.Model.Model != "" {
			clientCfg.Model = prompt.Model.Model
		}
		if prompt.Model.Temperature != 0 {
			clientCfg.Temperature = prompt.Model.Temperature
		}
		if prompt.Model.MaxTokens != 0 {
			clientCfg.MaxTokens = prompt.Model.MaxTokens
		}
	}
	return llm.NewClient(clientCfg)
}
