package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/envspec/speccompare"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// Output format command flags
var (
	prettyDiffJSON bool   = true // Pretty-print JSON output
	outFormat      string        // "text" | "json"
	outMode        string = ""   // "full" | "diff" | "summary"
)

// createCompareCommand creates the compare subcommand
func createCompareCommand() *cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare [flags] MANIFEST_FILE1 MANIFEST_FILE2",
		Short: "compares two environment manifest files",
		Long: `Compare performs a deep comparison of two environment manifests
and provides useful details of the differences such as channel priority
order, conda dependency constraints, pip requirements and the editable
install target.`,
		Args: cobra.ExactArgs(2),

		RunE:              executeCompare,
		ValidArgsFunction: manifestFileCompletion,
	}

	// Add flags
	compareCmd.Flags().BoolVar(&prettyDiffJSON, "pretty", true,
		"Pretty-print JSON output (only for --format json)")
	compareCmd.Flags().StringVar(&outFormat, "format", "text",
		"Output format: text or json")
	compareCmd.Flags().StringVar(&outMode, "mode", "",
		"Output mode: full, diff, or summary (default: diff for text, full for json)")
	return compareCmd
}

func resolveDefaults(format, mode string) (string, string) {
	format = strings.ToLower(format)
	mode = strings.ToLower(mode)

	// Set default mode if not specified
	if mode == "" {
		if format == "json" {
			mode = "full"
		} else {
			mode = "diff"
		}
	}
	return format, mode
}

// executeCompare handles the compare command execution logic
func executeCompare(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	manifestFile1 := args[0]
	manifestFile2 := args[1]
	log.Infof("Comparing manifest files: %s and %s", manifestFile1, manifestFile2)

	spec1, err1 := envspec.Load(manifestFile1)
	if err1 != nil {
		return fmt.Errorf("manifest parsing failed: %v", err1)
	}
	spec2, err2 := envspec.Load(manifestFile2)
	if err2 != nil {
		return fmt.Errorf("manifest parsing failed: %v", err2)
	}

	compareResult := speccompare.CompareSpecs(spec1, spec2, manifestFile1, manifestFile2)

	format, mode := resolveDefaults(outFormat, outMode)

	switch format {
	case "json":
		var payload any
		switch mode {
		case "full":
			payload = &compareResult
		case "diff":
			payload = struct {
				Equal bool                 `json:"equal"`
				Diff  speccompare.SpecDiff `json:"diff"`
			}{compareResult.Equal, compareResult.Diff}
		case "summary":
			payload = struct {
				Equal   bool                       `json:"equal"`
				Summary speccompare.CompareSummary `json:"summary"`
			}{compareResult.Equal, compareResult.Summary}
		default:
			return fmt.Errorf("unknown output mode %q", mode)
		}
		if err := writeJSON(cmd.OutOrStdout(), payload, prettyDiffJSON); err != nil {
			return err
		}
	case "text":
		switch mode {
		case "full", "diff", "summary":
			speccompare.RenderText(cmd.OutOrStdout(), compareResult, mode)
		default:
			return fmt.Errorf("unknown output mode %q", mode)
		}
	default:
		return fmt.Errorf("unknown output format %q, expected text or json", format)
	}

	return nil
}

func writeJSON(w io.Writer, payload any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encoding compare result: %w", err)
	}
	return nil
}
