// Package cli implements the command-line driving adapter. Commands
// hold no business logic; they parse flags, call the driving port
// services and render the results.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired in by the composition root before Execute.
var (
	reviewService driving.ReviewService
	resultService driving.ResultService
	configStore   driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Apply NDA review findings to Word documents",
	Long: `Redline applies a reviewed batch of findings to a .docx document,
producing a tracked-changes variant for negotiation and a clean variant
with the edits applied directly. Formatting and document structure are
preserved; only the cited text is touched.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output to stderr")
}

// SetServices wires the driving port implementations into the command
// tree. Must be called before Execute.
func SetServices(review driving.ReviewService, results driving.ResultService, config driven.ConfigStore) {
	reviewService = review
	resultService = results
	configStore = config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
