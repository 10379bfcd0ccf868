package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// createFmtCommand creates the fmt subcommand
func createFmtCommand() *cobra.Command {
	var write bool

	fmtCmd := &cobra.Command{
		Use:   "fmt [flags] MANIFEST_FILE",
		Short: "Rewrite a manifest in canonical form",
		Long: `Fmt parses a manifest and re-serializes it canonically: stable key
order, two-space indentation, editable installs in the --editable form, and
no prefix key. The dependency set, channel order, and dependency order are
preserved exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeFmt(cmd, args[0], write)
		},
		ValidArgsFunction: manifestFileCompletion,
	}

	fmtCmd.Flags().BoolVarP(&write, "write", "w", false,
		"Rewrite the file in place instead of printing to stdout")

	return fmtCmd
}

func executeFmt(cmd *cobra.Command, manifestFile string, write bool) error {
	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return err
	}

	if write {
		if err := spec.SaveTo(manifestFile); err != nil {
			return err
		}
		logger.Logger().Infof("rewrote %s in canonical form", manifestFile)
		return nil
	}

	data, err := spec.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
