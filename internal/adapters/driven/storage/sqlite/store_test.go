package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleResult(id string, createdAt time.Time) domain.ReviewResult {
	return domain.ReviewResult{
		ID:           id,
		DocumentName: "nda.docx",
		Mode:         domain.ModeTracked,
		Author:       "Reviewer",
		Outcomes: []domain.EditOutcome{
			{
				FindingID: 1,
				Status:    domain.StatusApplied,
				Span: &domain.MatchSpan{
					ParagraphIndex: 3,
					Start:          10,
					End:            24,
					Confidence:     domain.ConfidenceExact,
					Score:          1.0,
				},
			},
			{FindingID: 2, Status: domain.StatusSkippedNotFound},
		},
		CreatedAt: createdAt,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(tmpDir, "results.db"), store.Path())
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopening runs the migration check again without error
	store2, err := NewStore(tmpDir)
	require.NoError(t, err)
	defer store2.Close()
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := sampleResult("run-1", created)
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.DocumentName, got.DocumentName)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Author, got.Author)
	assert.Equal(t, want.Outcomes, got.Outcomes)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Save_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := sampleResult("run-1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, result))

	result.Author = "Second Reviewer"
	result.Mode = domain.ModeClean
	require.NoError(t, store.Save(ctx, result))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Second Reviewer", got.Author)
	assert.Equal(t, domain.ModeClean, got.Mode)

	results, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStore_List_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, sampleResult("run-old", base.Add(-time.Hour))))
	require.NoError(t, store.Save(ctx, sampleResult("run-new", base)))
	require.NoError(t, store.Save(ctx, sampleResult("run-mid", base.Add(-30*time.Minute))))

	results, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "run-new", results[0].ID)
	assert.Equal(t, "run-mid", results[1].ID)
	assert.Equal(t, "run-old", results[2].ID)
}

func TestStore_List_Empty(t *testing.T) {
	store := newTestStore(t)

	results, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	store1, err := NewStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Save(ctx, sampleResult("run-1", time.Now().UTC())))
	require.NoError(t, store1.Close())

	store2, err := NewStore(tmpDir)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "nda.docx", got.DocumentName)
}

func TestStore_EmptyOutcomes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := domain.ReviewResult{
		ID:           "run-empty",
		DocumentName: "empty.docx",
		Mode:         domain.ModeClean,
		Author:       "Reviewer",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, result))

	got, err := store.Get(ctx, "run-empty")
	require.NoError(t, err)
	assert.Empty(t, got.Outcomes)
}
