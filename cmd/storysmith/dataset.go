package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sreevatsan/storysmith/internal/hub"
	"github.com/sreevatsan/storysmith/internal/ui"
	"gopkg.in/yaml.v3"
)

var (
	datasetName        string
	datasetDescription string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage datasets on the hub",
}

var datasetUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Create a dataset and upload examples from a JSON or YAML file",
	Long: `Reads examples from a local file, creates a dataset on the hub and
uploads the examples into it. The file holds a list of examples, each with
"inputs" and optional "outputs" string maps.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter()

		examples, err := readExamples(args[0])
		if err != nil {
			return err
		}

		hubClient, err := buildHub()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		dataset, err := hubClient.CreateDataset(ctx, datasetName, datasetDescription)
		if err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}

		if err := hubClient.CreateExamples(ctx, dataset.ID, examples); err != nil {
			return fmt.Errorf("upload examples: %w", err)
		}

		printer.Success(fmt.Sprintf("Created dataset %q with %d examples", dataset.Name, len(examples)))
		printer.Info("Dataset ID: " + dataset.ID)
		return nil
	},
}

func init() {
	datasetUploadCmd.Flags().StringVar(&datasetName, "name", "Movie Ratings Dataset", "Dataset name")
	datasetUploadCmd.Flags().StringVar(&datasetDescription, "description",
		"Movie rating predictions based on descriptions and decades", "Dataset description")

	datasetCmd.AddCommand(datasetUploadCmd)
}

// readExamples parses a dataset file by extension.
func readExamples(path string) ([]hub.Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	var examples []hub.Example
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .json or .yaml)", ext)
	}

	if len(examples) == 0 {
		return nil, fmt.Errorf("no examples in %s", path)
	}
	return examples, nil
}
