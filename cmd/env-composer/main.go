package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notebook-tools/env-composer/internal/config"
	"github.com/notebook-tools/env-composer/internal/utils/logger"
)

// Global command flags
var (
	verbose    bool
	logLevel   string
	configFile string
)

// globalConfig is loaded once per invocation by the logging hook.
var globalConfig *config.GlobalConfig

func main() {
	root := createRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand creates the env-composer root command
func createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "env-composer",
		Short: "Work with Binder-style conda environment manifests",
		Long: `env-composer validates, inspects, compares, exports, and locks
conda environment manifests (environment.yml files) used to provision
reproducible notebook demo environments.

It never installs packages or resolves dependencies; that is the job of the
environment manager consuming the manifest.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output (same as --log-level debug)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, or error")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultFileName,
		"Path to the env-composer configuration file")

	root.AddCommand(createValidateCommand())
	root.AddCommand(createShowCommand())
	root.AddCommand(createCompareCommand())
	root.AddCommand(createFmtCommand())
	root.AddCommand(createExportCommand())
	root.AddCommand(createLockCommand())
	root.AddCommand(createVerifyCommand())
	root.AddCommand(createChannelsCommand())

	attachLoggingHooks(root)

	return root
}

// attachLoggingHooks installs the config/logging setup hook on every
// subcommand so it runs after flag parsing but before command logic.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = setupRunEnvironment
	}
}

func setupRunEnvironment(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	globalConfig = cfg

	level := resolveRequestedLogLevel(cmd)
	if level == "" {
		level = cfg.Logging.Level
	}
	return logger.InitWithLevel(level)
}

// resolveRequestedLogLevel prefers an explicit --log-level over the
// --verbose fallback. Empty means "use the configured level".
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd != nil {
		if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
			return "debug"
		}
	}
	return ""
}

// manifestFileCompletion completes positional arguments with YAML files.
func manifestFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"yml", "yaml"}, cobra.ShellCompDirectiveFilterFileExt
}
