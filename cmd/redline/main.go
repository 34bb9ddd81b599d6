// Command redline applies NDA review findings to Word documents.
package main

import (
	"fmt"
	"os"

	configfile "github.com/custodia-labs/redline-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/redline-cli/internal/adapters/driven/docx"
	"github.com/custodia-labs/redline-cli/internal/adapters/driven/findings"
	"github.com/custodia-labs/redline-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/redline-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/redline-cli/internal/core/services"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	resultStore, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer func() {
		if err := resultStore.Close(); err != nil {
			logger.Warn("closing result store: %v", err)
		}
	}()

	reviewService := services.NewReviewService(docx.New(), findings.New(), resultStore)
	resultService := services.NewResultService(resultStore)

	cli.SetVersion(version)
	cli.SetServices(reviewService, resultService, configStore)
	return cli.Execute()
}
