package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect past review runs",
	RunE:  runResultsList,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past review runs",
	RunE:  runResultsList,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one review run's per-finding outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

func init() {
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	rootCmd.AddCommand(resultsCmd)
}

func runResultsList(cmd *cobra.Command, _ []string) error {
	if resultService == nil {
		return errors.New("result service not configured")
	}

	results, err := resultService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing results: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No review runs recorded.")
		return nil
	}

	for _, r := range results {
		applied, notFound, unchanged, ambiguous := r.Counts()
		cmd.Printf("%s  %s  %s (%s)  %d applied, %d not found, %d unchanged, %d ambiguous\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.DocumentName, r.Mode,
			applied, notFound, unchanged, ambiguous)
	}
	return nil
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	if resultService == nil {
		return errors.New("result service not configured")
	}

	result, err := resultService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no review run with id %q", args[0])
		}
		return fmt.Errorf("getting result: %w", err)
	}

	cmd.Printf("Run:      %s\n", result.ID)
	cmd.Printf("Document: %s\n", result.DocumentName)
	cmd.Printf("Mode:     %s\n", result.Mode)
	cmd.Printf("Author:   %s\n", result.Author)
	cmd.Printf("Date:     %s\n", result.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()

	for _, o := range result.Outcomes {
		if o.Span != nil {
			cmd.Printf("  finding %d: %s (%s match, paragraph %d)\n",
				o.FindingID, o.Status, o.Span.Confidence, o.Span.ParagraphIndex)
			continue
		}
		cmd.Printf("  finding %d: %s\n", o.FindingID, o.Status)
	}
	return nil
}
