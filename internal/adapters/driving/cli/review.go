package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
)

var (
	reviewMode       string
	reviewAuthor     string
	reviewIgnoreCase bool
	reviewSkipSame   bool
	reviewFuzzyFloor float64
	reviewOutDir     string
)

var reviewCmd = &cobra.Command{
	Use:   "review <document.docx> <findings.json>",
	Short: "Apply review findings to a document",
	Long: `Applies the findings batch to the document and writes the requested
output variants next to the input (or into --out).

Modes:
  tracked - Word tracked changes (w:ins/w:del), for negotiation
  clean   - edits applied directly, no markup
  both    - produce both variants (default)`,
	Args: cobra.ExactArgs(2),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewMode, "mode", "m", "both", "output variant: tracked, clean or both")
	reviewCmd.Flags().StringVar(&reviewAuthor, "author", "", "tracked-changes author (default from config)")
	reviewCmd.Flags().BoolVar(&reviewIgnoreCase, "ignore-case", false, "allow case-insensitive matching in clean mode")
	reviewCmd.Flags().BoolVar(&reviewSkipSame, "skip-if-same", true, "skip edits whose replacement equals the matched text")
	reviewCmd.Flags().Float64Var(&reviewFuzzyFloor, "fuzzy-floor", 0, "minimum fuzzy match similarity (default from config, else 0.8)")
	reviewCmd.Flags().StringVarP(&reviewOutDir, "out", "o", "", "output directory (default alongside the document)")
	rootCmd.AddCommand(reviewCmd)
}

// parseModes expands the --mode flag into the variant list.
func parseModes(mode string) ([]domain.Mode, error) {
	switch mode {
	case "both":
		return []domain.Mode{domain.ModeTracked, domain.ModeClean}, nil
	case string(domain.ModeTracked):
		return []domain.Mode{domain.ModeTracked}, nil
	case string(domain.ModeClean):
		return []domain.Mode{domain.ModeClean}, nil
	}
	return nil, fmt.Errorf("%w: mode %q (want tracked, clean or both)", domain.ErrUnsupportedMode, mode)
}

// reviewPolicy merges config defaults with the command's flags. An
// explicitly set flag wins over the config value.
func reviewPolicy(cmd *cobra.Command) domain.Policy {
	policy := domain.Policy{
		Author:     reviewAuthor,
		IgnoreCase: reviewIgnoreCase,
		SkipIfSame: reviewSkipSame,
		FuzzyFloor: reviewFuzzyFloor,
	}

	if configStore == nil {
		return policy
	}
	if policy.Author == "" {
		policy.Author = configStore.GetString("author")
	}
	if !cmd.Flags().Changed("ignore-case") {
		policy.IgnoreCase = configStore.GetBool("ignore_case")
	}
	if !cmd.Flags().Changed("skip-if-same") {
		if _, ok := configStore.Get("skip_if_same"); ok {
			policy.SkipIfSame = configStore.GetBool("skip_if_same")
		}
	}
	if policy.FuzzyFloor == 0 {
		policy.FuzzyFloor = configStore.GetFloat("fuzzy_floor")
	}
	return policy
}

func outputDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if configStore != nil {
		return configStore.GetString("output_dir")
	}
	return ""
}

func runReview(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	modes, err := parseModes(reviewMode)
	if err != nil {
		return err
	}

	report, err := reviewService.ReviewFiles(cmd.Context(), driving.ReviewFilesRequest{
		DocumentPath: args[0],
		FindingsPath: args[1],
		OutputDir:    outputDir(reviewOutDir),
		Modes:        modes,
		Policy:       reviewPolicy(cmd),
	})
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *driving.ReviewFilesReport) {
	for i, result := range report.Results {
		applied, notFound, unchanged, ambiguous := result.Counts()
		cmd.Printf("%s: %d applied, %d not found, %d unchanged, %d ambiguous\n",
			result.Mode, applied, notFound, unchanged, ambiguous)
		cmd.Printf("  wrote %s\n", report.OutputPaths[i])
	}
}
