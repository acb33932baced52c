package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/ui"
)

// Built-in demo examples for the movie-identifier prompt.
var identifyExamples = []map[string]string{
	{
		"movie_description": "A group of unlikely heroes must destroy a powerful ring by throwing it into a volcano while being pursued by evil forces",
		"decade":            "2000s",
	},
	{
		"movie_description": "An archaeologist with a whip searches for ancient biblical artifacts while fighting Nazis",
		"decade":            "1980s",
	},
}

var identifyPrompt string

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Identify movies from descriptions using a stored prompt",
	Long: `Pulls the movie-identifier prompt from the hub and runs the built-in
demo examples through it, printing the identified movie for each.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		hubClient, err := buildHub()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		prompt, err := hubClient.PullPrompt(ctx, identifyPrompt, true)
		if err != nil {
			return fmt.Errorf("pull prompt: %w", err)
		}
		client := clientForPrompt(prompt)

		printer.Header("Movie Identifier Demo")
		printer.Info("Using prompt: " + prompt.Name)
		printer.Divider()

		for i, example := range identifyExamples {
			fmt.Printf("Example %d:\n", i+1)
			fmt.Printf("Description: %s\n", example["movie_description"])
			fmt.Printf("Decade: %s\n", example["decade"])

			history, err := prompt.Render(example)
			if err != nil {
				return err
			}
			response, err := client.Chat(ctx, history)
			if err != nil {
				return err
			}

			fmt.Printf("Identified Movie: %s\n", response.Content)
			printer.Divider()
		}

		printer.Success("Demo complete!")
		return nil
	},
}

func init() {
	identifyCmd.Flags().StringVar(&identifyPrompt, "prompt", "movie-identifier", "Prompt name on the hub")
}
