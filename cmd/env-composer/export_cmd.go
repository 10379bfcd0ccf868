package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/export"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// createExportCommand creates the export subcommand
func createExportCommand() *cobra.Command {
	var formats []string
	var output string
	var bundle string

	exportCmd := &cobra.Command{
		Use:   "export [flags] MANIFEST_FILE",
		Short: "Export a manifest to secondary formats",
		Long: fmt.Sprintf(`Export renders a manifest into the formats consumed by secondary
tooling (available: %s).

With --bundle, the canonical manifest and every requested format are packed
into a tar archive; the compression is chosen by the bundle extension
(.tar, .tar.gz, .tar.zst, .tar.xz).`, strings.Join(export.Names(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeExport(cmd, args[0], formats, output, bundle)
		},
		ValidArgsFunction: manifestFileCompletion,
	}

	exportCmd.Flags().StringSliceVar(&formats, "format", []string{"requirements"},
		"Export format(s), repeatable")
	exportCmd.Flags().StringVarP(&output, "output", "o", "",
		"Output file path (default: stdout; single format only)")
	exportCmd.Flags().StringVar(&bundle, "bundle", "",
		"Write a bundle archive to this path instead of individual outputs")

	return exportCmd
}

func executeExport(cmd *cobra.Command, manifestFile string, formats []string, output, bundle string) error {
	log := logger.Logger()

	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return err
	}
	if err := spec.CheckInvariants(); err != nil {
		return fmt.Errorf("refusing to export invalid manifest: %v", err)
	}

	if bundle != "" {
		if output != "" {
			return fmt.Errorf("--output and --bundle are mutually exclusive")
		}
		if err := export.WriteBundle(spec, formats, bundle); err != nil {
			return err
		}
		log.Infof("✓ wrote bundle %s with formats %v", bundle, formats)
		return nil
	}

	if len(formats) != 1 {
		return fmt.Errorf("exactly one --format is required without --bundle, got %v", formats)
	}

	content, err := export.Render(formats[0], spec)
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), string(content))
		return nil
	}
	if err := os.WriteFile(output, content, 0644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	log.Infof("✓ exported %s as %s to %s", spec.Name, formats[0], output)
	return nil
}
