package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/envspec"
)

// manifestSummary is the JSON shape of the show command output.
type manifestSummary struct {
	File              string   `json:"file"`
	Name              string   `json:"name"`
	Channels          []string `json:"channels"`
	CondaDependencies []string `json:"condaDependencies"`
	PipRequirements   []string `json:"pipRequirements"`
	EditablePath      string   `json:"editablePath,omitempty"`
	Variables         int      `json:"variables,omitempty"`
}

// createShowCommand creates the show subcommand
func createShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show [flags] MANIFEST_FILE",
		Short: "Summarize an environment manifest",
		Long: `Show prints a summary of an environment manifest: name, channel
priority order, conda dependencies, and the pip delegation block including
the editable install target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeShow(cmd, args[0], format)
		},
		ValidArgsFunction: manifestFileCompletion,
	}

	showCmd.Flags().StringVar(&format, "format", "text",
		"Output format: text or json")

	return showCmd
}

func executeShow(cmd *cobra.Command, manifestFile, format string) error {
	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return err
	}

	summary := summarizeSpec(spec, manifestFile)

	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "text":
		renderSummaryText(cmd, summary)
	default:
		return fmt.Errorf("unknown output format %q, expected text or json", format)
	}
	return nil
}

func summarizeSpec(spec *envspec.EnvironmentSpec, file string) manifestSummary {
	summary := manifestSummary{
		File:      file,
		Name:      spec.Name,
		Channels:  spec.Channels,
		Variables: len(spec.Variables),
	}
	for _, dep := range spec.CondaDependencies() {
		summary.CondaDependencies = append(summary.CondaDependencies, dep.String())
	}
	if block, ok := spec.PipBlock(); ok {
		for _, req := range block.Requirements {
			if req.Kind == envspec.PipEditable {
				summary.EditablePath = req.Path
				continue
			}
			summary.PipRequirements = append(summary.PipRequirements, req.Spec.String())
		}
	}
	return summary
}

func renderSummaryText(cmd *cobra.Command, summary manifestSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Environment: %s (%s)\n", summary.Name, summary.File)
	fmt.Fprintf(out, "Channels: %s\n", strings.Join(summary.Channels, ", "))
	fmt.Fprintf(out, "Conda dependencies (%d):\n", len(summary.CondaDependencies))
	for _, dep := range summary.CondaDependencies {
		fmt.Fprintf(out, "  - %s\n", dep)
	}
	fmt.Fprintf(out, "Pip requirements (%d):\n", len(summary.PipRequirements))
	for _, req := range summary.PipRequirements {
		fmt.Fprintf(out, "  - %s\n", req)
	}
	if summary.EditablePath != "" {
		fmt.Fprintf(out, "Editable install: %s\n", summary.EditablePath)
	}
}
