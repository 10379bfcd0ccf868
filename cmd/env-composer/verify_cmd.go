package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/lock"
	"github.com/notebook-tools/env-composer/internal/locksign"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// createVerifyCommand creates the verify subcommand
func createVerifyCommand() *cobra.Command {
	var keyring string
	var signature string
	var manifestFile string

	verifyCmd := &cobra.Command{
		Use:   "verify [flags] LOCK_FILE",
		Short: "Verify a lock file signature",
		Long: `Verify checks the detached signature of a lock file against a public
keyring. With --manifest it additionally re-hashes the manifest and compares
it to the hash recorded in the lock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeVerify(args[0], signature, keyring, manifestFile)
		},
	}

	verifyCmd.Flags().StringVar(&keyring, "key", "",
		"Armored public keyring path (required)")
	verifyCmd.Flags().StringVar(&signature, "signature", "",
		"Signature path (default: LOCK_FILE.asc)")
	verifyCmd.Flags().StringVar(&manifestFile, "manifest", "",
		"Also check the manifest hash recorded in the lock")
	verifyCmd.MarkFlagRequired("key")

	return verifyCmd
}

func executeVerify(lockFile, signature, keyring, manifestFile string) error {
	log := logger.Logger()

	if signature == "" {
		signature = lockFile + ".asc"
	}

	identity, err := locksign.VerifyFile(lockFile, signature, keyring)
	if err != nil {
		return err
	}
	log.Infof("✓ signature ok, signed by %s", identity)

	if manifestFile != "" {
		l, err := lock.ReadLockFromFile(lockFile)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(manifestFile)
		if err != nil {
			return fmt.Errorf("reading manifest: %w", err)
		}
		if err := l.VerifyManifest(raw); err != nil {
			return err
		}
		log.Infof("✓ manifest hash matches lock %s", l.ID)
	}

	return nil
}
