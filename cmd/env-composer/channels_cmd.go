package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/channel"
	"github.com/notebook-tools/env-composer/internal/config"
	"github.com/notebook-tools/env-composer/internal/envspec"
	"github.com/notebook-tools/env-composer/internal/utils/general/slice"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// createChannelsCommand creates the channels subcommand group
func createChannelsCommand() *cobra.Command {
	channelsCmd := &cobra.Command{
		Use:   "channels",
		Short: "Work with the channel index cache",
	}

	channelsCmd.AddCommand(createChannelsSyncCommand())
	channelsCmd.AddCommand(createChannelsLintCommand())

	return channelsCmd
}

func createChannelsSyncCommand() *cobra.Command {
	var dest string
	var workers int

	syncCmd := &cobra.Command{
		Use:   "sync [flags] MANIFEST_FILE",
		Short: "Download repodata for every channel of a manifest",
		Long: `Sync downloads the repodata indexes of every channel declared in the
manifest into the local cache directory, so availability checks can run
offline afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeChannelsSync(args[0], dest, workers)
		},
		ValidArgsFunction: manifestFileCompletion,
	}

	syncCmd.Flags().StringVar(&dest, "dest", "",
		"Cache directory (default: from configuration)")
	syncCmd.Flags().IntVar(&workers, "workers", 0,
		"Concurrent downloads (default: from configuration)")

	return syncCmd
}

func executeChannelsSync(manifestFile, dest string, workers int) error {
	log := logger.Logger()

	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return err
	}
	if len(spec.Channels) == 0 {
		return fmt.Errorf("manifest %q declares no channels", spec.Name)
	}

	helpers := config.NewConfigHelpers(globalConfig)
	if dest == "" {
		dest, err = helpers.CacheDir()
		if err != nil {
			return fmt.Errorf("resolving cache directory: %w", err)
		}
	}
	if workers == 0 {
		workers = helpers.Workers()
	}

	channels := slice.Dedupe(spec.Channels)
	log.Infof("syncing %d channels into %s with %d workers", len(channels), dest, workers)
	if err := channel.Sync(channels, dest, workers); err != nil {
		return err
	}

	logger.GlobalSyncReport.Title = spec.Name
	logger.ReportPath = dest
	if err := logger.WriteSyncReportToFile(); err != nil {
		log.Warnf("writing sync report failed: %v", err)
	}

	log.Infof("✓ synced channel indexes for %s", spec.Name)
	return nil
}

func createChannelsLintCommand() *cobra.Command {
	var indexDir string

	lintCmd := &cobra.Command{
		Use:   "lint [flags] MANIFEST_FILE",
		Short: "Check dependency availability against synced indexes",
		Long: `Lint checks that every conda dependency of the manifest exists by name
in at least one synced channel index. It does not resolve versions; that is
the environment manager's job.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeChannelsLint(args[0], indexDir)
		},
		ValidArgsFunction: manifestFileCompletion,
	}

	lintCmd.Flags().StringVar(&indexDir, "index", "",
		"Directory holding synced repodata (default: cache directory)")

	return lintCmd
}

func executeChannelsLint(manifestFile, indexDir string) error {
	log := logger.Logger()

	spec, err := envspec.Load(manifestFile)
	if err != nil {
		return err
	}

	if indexDir == "" {
		helpers := config.NewConfigHelpers(globalConfig)
		indexDir, err = helpers.CacheDir()
		if err != nil {
			return fmt.Errorf("resolving cache directory: %w", err)
		}
	}

	indexes, err := channel.LoadDir(indexDir)
	if err != nil {
		return err
	}
	log.Infof("loaded %d indexes from %s", len(indexes), indexDir)

	problems := channel.Lint(spec, indexes)
	if len(problems) > 0 {
		for _, p := range problems {
			log.Errorf("availability: %s", p)
		}
		return fmt.Errorf("%d of %d conda dependencies unavailable",
			len(problems), len(spec.CondaDependencies()))
	}

	log.Infof("✓ all conda dependencies of %s available", spec.Name)
	return nil
}
