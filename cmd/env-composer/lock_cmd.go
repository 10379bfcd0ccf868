package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/channel"
	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/lock"
	"github.com/notebook-tools/env-composer/internal/locksign"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// createLockCommand creates the lock subcommand
func createLockCommand() *cobra.Command {
	var output string
	var indexDir string
	var signKey string

	lockCmd := &cobra.Command{
		Use:   "lock [flags] MANIFEST_FILE",
		Short: "Write a lock snapshot of a manifest",
		Long: `Lock records the manifest content and its constraint pins in a dated,
uniquely identified lock document. With --index the conda dependencies are
first checked against synced channel indexes; with --sign the lock is signed
with a detached armored signature.

Lock records, it does not resolve: pinning exact build strings is the
environment manager's job.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeLock(args[0], output, indexDir, signKey)
		},
		ValidArgsFunction: manifestFileCompletion,
	}

	lockCmd.Flags().StringVarP(&output, "output", "o", "",
		"Lock file path (default: MANIFEST_FILE with .lock.json suffix)")
	lockCmd.Flags().StringVar(&indexDir, "index", "",
		"Check dependency availability against repodata under this directory")
	lockCmd.Flags().StringVar(&signKey, "sign", "",
		"Sign the lock with the armored private keyring at this path")

	return lockCmd
}

func executeLock(manifestFile, output, indexDir, signKey string) error {
	log := logger.Logger()

	raw, err := os.ReadFile(manifestFile)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return err
	}
	if err := spec.CheckInvariants(); err != nil {
		return fmt.Errorf("refusing to lock invalid manifest: %v", err)
	}

	if indexDir != "" {
		indexes, err := channel.LoadDir(indexDir)
		if err != nil {
			return err
		}
		if problems := channel.Lint(spec, indexes); len(problems) > 0 {
			for _, p := range problems {
				log.Errorf("availability: %s", p)
			}
			return fmt.Errorf("%d dependencies unavailable in synced indexes", len(problems))
		}
	}

	l := lock.FromSpec(spec, manifestFile, raw)

	if output == "" {
		output = manifestFile + ".lock.json"
	}
	if err := lock.WriteLockToFile(l, output); err != nil {
		return err
	}
	log.Infof("✓ wrote lock %s (id %s)", output, l.ID)

	if signKey != "" {
		sigPath, err := locksign.SignFile(output, signKey)
		if err != nil {
			return err
		}
		log.Infof("✓ signed lock, signature at %s", sigPath)
	}

	return nil
}
