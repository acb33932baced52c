package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/config"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	// Initialized once in PersistentPreRunE, shared by subcommands.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storysmith",
	Short: "Prompt hub client and tool-calling agent CLI",
	Long: `
  ███████╗████████╗ ██████╗ ██████╗ ██╗   ██╗
  ██╔════╝╚══██╔══╝██╔═══██╗██╔══██╗╚██╗ ██╔╝
  ███████╗   ██║   ██║   ██║██████╔╝ ╚████╔╝
  ╚════██║   ██║   ██║   ██║██╔══██╗  ╚██╔╝
  ███████║   ██║   ╚██████╔╝██║  ██║   ██║  smith
  ╚══════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝   ╚═╝

  Pull stored prompts, run tool-calling agents, upload datasets
  and evaluate prompts against them.

Examples:
  storysmith chat "Add 3 and 4. Multiply the output by 2"
  storysmith chat --it
  storysmith outline --genre horror --context "A camping trip goes wrong"
  storysmith eval --dataset "story input" --prefix story-outline-evaluation`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			fmt.Printf("Warning: could not load config: %v\n", err)
			cfg = config.Default()
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
