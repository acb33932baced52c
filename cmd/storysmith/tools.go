package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/tools"
	"github.com/sreevatsan/storysmith/internal/ui"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools bound to the chat agent",

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		registry, err := tools.NewRegistry(tools.Arithmetic()...)
		if err != nil {
			return err
		}

		printer.Header("Available tools")
		for _, name := range registry.List() {
			tool, _ := registry.Get(name)
			fmt.Printf("  %-10s %s\n", name, tool.Description())
		}
		return nil
	},
}
