package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/envspec/validate"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [flags] MANIFEST_FILE",
		Short: "Validate an environment manifest file",
		Long: `Validate an environment manifest against the schema, the constraint
grammar, and the structural invariants (single pip block, single editable
install with a resolvable path) without building anything.
This allows checking for errors in your manifest before handing it to the
environment manager.`,
		Args:              cobra.ExactArgs(1),
		RunE:              executeValidate,
		ValidArgsFunction: manifestFileCompletion,
	}

	return validateCmd
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	manifestFile := args[0]
	log.Infof("validating manifest file: %s", manifestFile)

	data, err := os.ReadFile(manifestFile)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	// Schema first: structural shape and types.
	if err := validate.ValidateEnvironmentYAML(data); err != nil {
		return fmt.Errorf("manifest validation failed: %v", err)
	}

	// Then the grammar and invariants on the parsed form.
	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return fmt.Errorf("manifest validation failed: %v", err)
	}
	if err := spec.CheckInvariants(); err != nil {
		return fmt.Errorf("manifest validation failed: %v", err)
	}

	log.Infof("✓ Manifest validation successful for %s", manifestFile)
	log.Infof("Environment: %s", spec.Name)
	log.Infof("Channels: %v", spec.Channels)

	if verbose {
		conda := spec.CondaDependencies()
		log.Infof("Conda dependencies: %d specified", len(conda))
		for _, dep := range conda {
			log.Infof("    - %s", dep.String())
		}
		if block, ok := spec.PipBlock(); ok {
			log.Infof("Pip requirements: %d specified", len(block.Requirements))
			for _, req := range block.Requirements {
				log.Infof("    - %s", req.String())
			}
		}
	}

	return nil
}
