package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockReviewService implements driving.ReviewService for testing.
type mockReviewService struct {
	report  *driving.ReviewFilesReport
	err     error
	lastReq driving.ReviewFilesRequest
}

func (m *mockReviewService) Review(_ context.Context, doc *domain.Document, _ []domain.Finding, _ domain.Mode, _ domain.Policy) (*domain.Document, []domain.EditOutcome, error) {
	return doc, nil, m.err
}

func (m *mockReviewService) ReviewFiles(_ context.Context, req driving.ReviewFilesRequest) (*driving.ReviewFilesReport, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

// mockResultService implements driving.ResultService for testing.
type mockResultService struct {
	results []domain.ReviewResult
	result  *domain.ReviewResult
	err     error
}

func (m *mockResultService) List(_ context.Context) ([]domain.ReviewResult, error) {
	return m.results, m.err
}

func (m *mockResultService) Get(_ context.Context, _ string) (*domain.ReviewResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	data map[string]any
	path string
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.data[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetBool(key string) bool {
	if b, ok := m.data[key].(bool); ok {
		return b
	}
	return false
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	if f, ok := m.data[key].(float64); ok {
		return f
	}
	return 0
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return m.path
}

// --- Helpers ---

// withServices swaps the package-level services for one test.
func withServices(t *testing.T, review *mockReviewService, results *mockResultService, config *mockConfigStore) {
	t.Helper()
	origReview, origResults, origConfig := reviewService, resultService, configStore
	t.Cleanup(func() {
		reviewService, resultService, configStore = origReview, origResults, origConfig
	})
	reviewService = review
	resultService = results
	if config != nil {
		configStore = config
	} else {
		configStore = nil
	}
}

// execute runs the root command with args and captures output. Flags
// changed by a previous execution are reset to their defaults first,
// since cobra commands are package-level singletons.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, cmd := range []*cobra.Command{reviewCmd, watchCmd} {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func sampleReport() *driving.ReviewFilesReport {
	return &driving.ReviewFilesReport{
		Results: []domain.ReviewResult{
			{
				ID:           "run-1",
				DocumentName: "nda.docx",
				Mode:         domain.ModeTracked,
				Outcomes: []domain.EditOutcome{
					{FindingID: 1, Status: domain.StatusApplied},
					{FindingID: 2, Status: domain.StatusSkippedNotFound},
				},
			},
		},
		OutputPaths: []string{"/out/nda_tracked.docx"},
	}
}

// --- Tests ---

func TestReviewCmd_Use(t *testing.T) {
	assert.Equal(t, "review <document.docx> <findings.json>", reviewCmd.Use)
}

func TestReviewCmd_PrintsSummary(t *testing.T) {
	review := &mockReviewService{report: sampleReport()}
	withServices(t, review, nil, nil)

	out, err := execute(t, "review", "nda.docx", "findings.json")

	require.NoError(t, err)
	assert.Contains(t, out, "tracked: 1 applied, 1 not found, 0 unchanged, 0 ambiguous")
	assert.Contains(t, out, "wrote /out/nda_tracked.docx")
}

func TestReviewCmd_DefaultModesBoth(t *testing.T) {
	review := &mockReviewService{report: &driving.ReviewFilesReport{}}
	withServices(t, review, nil, nil)

	_, err := execute(t, "review", "nda.docx", "findings.json")

	require.NoError(t, err)
	assert.Equal(t, []domain.Mode{domain.ModeTracked, domain.ModeClean}, review.lastReq.Modes)
}

func TestReviewCmd_SingleMode(t *testing.T) {
	review := &mockReviewService{report: &driving.ReviewFilesReport{}}
	withServices(t, review, nil, nil)

	_, err := execute(t, "review", "nda.docx", "findings.json", "--mode", "clean")

	require.NoError(t, err)
	assert.Equal(t, []domain.Mode{domain.ModeClean}, review.lastReq.Modes)
}

func TestReviewCmd_InvalidMode(t *testing.T) {
	withServices(t, &mockReviewService{}, nil, nil)

	_, err := execute(t, "review", "nda.docx", "findings.json", "--mode", "redlined")

	assert.ErrorIs(t, err, domain.ErrUnsupportedMode)
}

func TestReviewCmd_PolicyFlags(t *testing.T) {
	review := &mockReviewService{report: &driving.ReviewFilesReport{}}
	withServices(t, review, nil, nil)

	_, err := execute(t, "review", "nda.docx", "findings.json",
		"--author", "Jane Reviewer", "--ignore-case", "--skip-if-same=false",
		"--fuzzy-floor", "0.9", "--out", "/tmp/out")

	require.NoError(t, err)
	assert.Equal(t, "Jane Reviewer", review.lastReq.Policy.Author)
	assert.True(t, review.lastReq.Policy.IgnoreCase)
	assert.False(t, review.lastReq.Policy.SkipIfSame)
	assert.InDelta(t, 0.9, review.lastReq.Policy.FuzzyFloor, 0.00001)
	assert.Equal(t, "/tmp/out", review.lastReq.OutputDir)
}

func TestReviewCmd_ConfigDefaults(t *testing.T) {
	review := &mockReviewService{report: &driving.ReviewFilesReport{}}
	config := &mockConfigStore{data: map[string]any{
		"author":      "Config Author",
		"ignore_case": true,
		"fuzzy_floor": 0.85,
		"output_dir":  "/cfg/out",
	}}
	withServices(t, review, nil, config)

	_, err := execute(t, "review", "nda.docx", "findings.json")

	require.NoError(t, err)
	assert.Equal(t, "Config Author", review.lastReq.Policy.Author)
	assert.True(t, review.lastReq.Policy.IgnoreCase)
	assert.InDelta(t, 0.85, review.lastReq.Policy.FuzzyFloor, 0.00001)
	assert.Equal(t, "/cfg/out", review.lastReq.OutputDir)
}

func TestReviewCmd_FlagsOverrideConfig(t *testing.T) {
	review := &mockReviewService{report: &driving.ReviewFilesReport{}}
	config := &mockConfigStore{data: map[string]any{
		"author":     "Config Author",
		"output_dir": "/cfg/out",
	}}
	withServices(t, review, nil, config)

	_, err := execute(t, "review", "nda.docx", "findings.json",
		"--author", "Flag Author", "--out", "/flag/out")

	require.NoError(t, err)
	assert.Equal(t, "Flag Author", review.lastReq.Policy.Author)
	assert.Equal(t, "/flag/out", review.lastReq.OutputDir)
}

func TestReviewCmd_ServiceError(t *testing.T) {
	review := &mockReviewService{err: errors.New("document is corrupt")}
	withServices(t, review, nil, nil)

	_, err := execute(t, "review", "nda.docx", "findings.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is corrupt")
}

func TestReviewCmd_NoService(t *testing.T) {
	withServices(t, nil, nil, nil)
	reviewService = nil

	_, err := execute(t, "review", "nda.docx", "findings.json")

	assert.EqualError(t, err, "review service not configured")
}

func TestParseModes(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		want    []domain.Mode
		wantErr bool
	}{
		{name: "both", mode: "both", want: []domain.Mode{domain.ModeTracked, domain.ModeClean}},
		{name: "tracked", mode: "tracked", want: []domain.Mode{domain.ModeTracked}},
		{name: "clean", mode: "clean", want: []domain.Mode{domain.ModeClean}},
		{name: "unknown", mode: "fancy", wantErr: true},
		{name: "empty", mode: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModes(tt.mode)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
