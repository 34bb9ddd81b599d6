package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/redline-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ResultStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.ResultStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.redline/data/results.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".redline", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "results.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores a finished review result.
func (s *Store) Save(ctx context.Context, result domain.ReviewResult) error {
	outcomesJSON, err := json.Marshal(result.Outcomes)
	if err != nil {
		return fmt.Errorf("marshalling outcomes: %w", err)
	}

	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_results (id, document_name, mode, author, outcomes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_name = excluded.document_name,
			mode = excluded.mode,
			author = excluded.author,
			outcomes = excluded.outcomes,
			created_at = excluded.created_at
	`, result.ID, result.DocumentName, string(result.Mode), result.Author,
		string(outcomesJSON), result.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving review result: %w", err)
	}
	return nil
}

// Get retrieves a review result by run ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.ReviewResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_name, mode, author, outcomes, created_at
		FROM review_results
		WHERE id = ?
	`, id)

	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review result %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting review result: %w", err)
	}
	return result, nil
}

// List returns all review results, newest first.
func (s *Store) List(ctx context.Context) ([]domain.ReviewResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_name, mode, author, outcomes, created_at
		FROM review_results
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing review results: %w", err)
	}
	defer rows.Close()

	var results []domain.ReviewResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review result: %w", err)
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review results: %w", err)
	}
	return results, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*domain.ReviewResult, error) {
	var (
		result    domain.ReviewResult
		mode      string
		outcomes  string
		createdAt time.Time
	)
	if err := row.Scan(&result.ID, &result.DocumentName, &mode, &result.Author, &outcomes, &createdAt); err != nil {
		return nil, err
	}
	result.Mode = domain.Mode(mode)
	result.CreatedAt = createdAt.UTC()

	if err := json.Unmarshal([]byte(outcomes), &result.Outcomes); err != nil {
		return nil, fmt.Errorf("unmarshalling outcomes: %w", err)
	}
	return &result, nil
}
