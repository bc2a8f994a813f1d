// Package cli implements the command-line interface for codescout.
package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codescout/internal/config"
	"codescout/internal/ui"
)

var (
	// Version information set at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile string
	debug   bool
)

// SetVersionInfo sets the version information from build flags.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codescout [query]",
	Short: "Semantic symbol search for codebases",
	Long: `codescout keeps a content-addressed semantic index of the symbols in
your codebase. An LLM summarizes each source file into named units,
embeddings make them searchable in natural language, and content
fingerprints keep re-indexing incremental: only changed files do work.

Examples:
  # Build or refresh the index for the current directory
  codescout sync

  # Search for relevant symbols
  codescout "where is the session token validated"

  # Keep the index fresh while you work
  codescout watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no args, show help
		if len(args) == 0 {
			return cmd.Help()
		}

		// Otherwise, run search command
		return runSearchShortcut(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging based on debug flag
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("Debug logging enabled")
		}

		// Load configuration
		if err := config.Load(cfgFile); err != nil {
			log.Warn("Failed to load config", "error", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize UI styles and logger
	ui.InitLogger()

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/codescout/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Bind flags to viper
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Add subcommands
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("codescout %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// runSearchShortcut delegates bare-query invocations to the search command.
func runSearchShortcut(cmd *cobra.Command, args []string) error {
	if content, _ := cmd.Flags().GetBool("content"); content {
		searchContent = true
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		searchLimit = limit
	}

	return runSearchCmd(cmd, args)
}

func init() {
	// Add search flags to root command for convenience
	rootCmd.Flags().BoolP("content", "c", false, "show source snippets in results")
	rootCmd.Flags().IntP("limit", "m", 0, "maximum number of results")
}
