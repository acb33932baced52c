package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/ui"
)

// MovieAnalysis is the structured response for movie story analysis.
type MovieAnalysis struct {
	Response string `json:"response"`
	Genre    string `json:"genre"`
}

func movieAnalysisSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"response": {
				Type:        "string",
				Description: "The main response analyzing the movie story",
			},
			"genre": {
				Type:        "string",
				Description: "The primary genre of the movie (e.g., Fantasy, Action, Drama)",
			},
		},
		Required: []string{"response", "genre"},
	}
}

var (
	analyzeStory  string
	analyzePrompt string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a movie story with schema-validated structured output",
	Long: `Pulls a stored prompt, invokes the model asking for output matching the
MovieAnalysis schema, validates the response against it and prints the typed
result. A response that does not match the schema is an error, never a
silent coercion.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		hubClient, err := buildHub()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		prompt, err := hubClient.PullPrompt(ctx, analyzePrompt, true)
		if err != nil {
			return fmt.Errorf("pull prompt: %w", err)
		}

		history, err := prompt.Render(map[string]string{"story": analyzeStory})
		if err != nil {
			return err
		}

		client := clientForPrompt(prompt)

		var analysis MovieAnalysis
		if err := client.ChatStructured(ctx, history, "movie_analysis", movieAnalysisSchema(), &analysis); err != nil {
			return err
		}

		printer.Header("Structured result")
		fmt.Printf("Response: %s\n", analysis.Response)
		fmt.Printf("Genre: %s\n", analysis.Genre)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStory, "story",
		"A group of unlikely heroes must destroy a powerful ring by throwing it into a volcano while being pursued by evil forces",
		"Story to analyze")
	analyzeCmd.Flags().StringVar(&analyzePrompt, "prompt", "gpt5-test", "Prompt name on the hub")
}
