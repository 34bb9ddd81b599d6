package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

var (
	watchMode       string
	watchAuthor     string
	watchIgnoreCase bool
	watchSkipSame   bool
	watchFuzzyFloor float64
	watchOutDir     string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and review documents as findings arrive",
	Long: `Monitors a directory for findings exports. When a findings JSON file
appears or changes, the document with the same base name (e.g.
nda.json pairs with nda.docx) is reviewed and the output variants are
written. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", "both", "output variant: tracked, clean or both")
	watchCmd.Flags().StringVar(&watchAuthor, "author", "", "tracked-changes author (default from config)")
	watchCmd.Flags().BoolVar(&watchIgnoreCase, "ignore-case", false, "allow case-insensitive matching in clean mode")
	watchCmd.Flags().BoolVar(&watchSkipSame, "skip-if-same", true, "skip edits whose replacement equals the matched text")
	watchCmd.Flags().Float64Var(&watchFuzzyFloor, "fuzzy-floor", 0, "minimum fuzzy match similarity (default from config, else 0.8)")
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "output directory (default the watched directory)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return errors.New("review service not configured")
	}

	watchDir := args[0]
	info, err := os.Stat(watchDir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, watchDir)
	}

	modes, err := parseModes(watchMode)
	if err != nil {
		return err
	}

	policy := domain.Policy{
		Author:     watchAuthor,
		IgnoreCase: watchIgnoreCase,
		SkipIfSame: watchSkipSame,
		FuzzyFloor: watchFuzzyFloor,
	}
	if configStore != nil {
		if policy.Author == "" {
			policy.Author = configStore.GetString("author")
		}
		if !cmd.Flags().Changed("ignore-case") {
			policy.IgnoreCase = configStore.GetBool("ignore_case")
		}
		if policy.FuzzyFloor == 0 {
			policy.FuzzyFloor = configStore.GetFloat("fuzzy_floor")
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("watching %s: %w", watchDir, err)
	}

	cmd.Printf("Watching %s for findings files. Ctrl-C to stop.\n", watchDir)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			docPath, findingsPath, match := pairForEvent(event)
			if !match {
				continue
			}
			logger.Debug("findings file %s changed, reviewing %s", findingsPath, docPath)

			report, err := reviewService.ReviewFiles(cmd.Context(), driving.ReviewFilesRequest{
				DocumentPath: docPath,
				FindingsPath: findingsPath,
				OutputDir:    watchOutDir,
				Modes:        modes,
				Policy:       policy,
			})
			if err != nil {
				// A half-written file often fails to parse; the next
				// write event retries.
				logger.Warn("review of %s failed: %v", docPath, err)
				continue
			}
			cmd.Printf("Reviewed %s:\n", filepath.Base(docPath))
			printReport(cmd, report)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// pairForEvent maps a filesystem event to a review pair: a created or
// written findings JSON whose sibling .docx exists. Hidden files and
// other extensions are ignored.
func pairForEvent(event fsnotify.Event) (docPath, findingsPath string, ok bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return "", "", false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return "", "", false
	}
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return "", "", false
	}

	docPath = strings.TrimSuffix(event.Name, filepath.Ext(event.Name)) + ".docx"
	if info, err := os.Stat(docPath); err != nil || info.IsDir() {
		return "", "", false
	}
	return docPath, event.Name, true
}
