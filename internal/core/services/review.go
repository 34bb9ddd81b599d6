package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/engine/apply"
	"github.com/custodia-labs/redline-cli/internal/engine/flatten"
	"github.com/custodia-labs/redline-cli/internal/engine/resolve"
	"github.com/custodia-labs/redline-cli/internal/engine/splitter"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

// ReviewService is the batch orchestrator: it drives a finalised batch
// of findings through normalisation, span resolution, run splitting
// and edit application, and aggregates the per-finding outcomes.
type ReviewService struct {
	codec    driven.DocumentCodec
	findings driven.FindingLoader
	results  driven.ResultStore

	// now is the clock used for revision timestamps and ledger rows.
	now func() time.Time
}

// NewReviewService creates a new review service. The result store may
// be nil, in which case ledgers are returned but not persisted.
func NewReviewService(codec driven.DocumentCodec, findings driven.FindingLoader, results driven.ResultStore) *ReviewService {
	return &ReviewService{
		codec:    codec,
		findings: findings,
		results:  results,
		now:      time.Now,
	}
}

// location is a resolved citation position used for ordering and for
// the actual edit.
type location struct {
	paragraph *domain.Paragraph
	paraIndex int
	span      resolve.Span
}

// Review applies the findings to a clone of the document. Findings are
// processed in document order: each finding's citation is located once
// up front to establish the order, then located again against the
// freshly re-flattened paragraph just before its edit, so earlier
// mutations can never leave a later finding holding stale offsets.
func (s *ReviewService) Review(ctx context.Context, doc *domain.Document, findings []domain.Finding, mode domain.Mode, policy domain.Policy) (*domain.Document, []domain.EditOutcome, error) {
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMode, mode)
	}
	for _, f := range findings {
		if err := f.Validate(); err != nil {
			return nil, nil, err
		}
	}

	work := doc.Clone()
	paragraphs := work.Paragraphs()
	opts := resolverOptions(mode, policy)

	logger.Section("review")
	logger.Debug("reviewing %d findings in %s mode across %d paragraphs", len(findings), mode, len(paragraphs))

	ordered := orderByPosition(findings, paragraphs, opts)

	outcomes := make([]domain.EditOutcome, 0, len(findings))
	for _, f := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		outcomes = append(outcomes, s.applyFinding(work, paragraphs, f, mode, policy, opts))
	}
	return work, outcomes, nil
}

// applyFinding runs the engine pipeline for one finding. Per-finding
// failures are outcomes, never errors: a batch always runs to the end.
func (s *ReviewService) applyFinding(doc *domain.Document, paragraphs []*domain.Paragraph, f domain.Finding, mode domain.Mode, policy domain.Policy, opts resolve.Options) domain.EditOutcome {
	if !f.Locatable() {
		logger.Debug("finding %d: citation marked not found by the analysis layer", f.ID)
		return domain.EditOutcome{FindingID: f.ID, Status: domain.StatusSkippedNotFound}
	}

	loc, ok := locate(paragraphs, f.Citation, opts)
	if !ok {
		logger.Debug("finding %d: no span cleared the matching floor", f.ID)
		return domain.EditOutcome{FindingID: f.ID, Status: domain.StatusSkippedNotFound}
	}
	if loc.span.Ambiguous {
		logger.Warn("finding %d: ambiguous fuzzy match, skipping rather than guessing", f.ID)
		return domain.EditOutcome{FindingID: f.ID, Status: domain.StatusSkippedAmbiguous}
	}

	flat := flatten.Paragraph(loc.paragraph)
	matched, err := splitter.Isolate(loc.paragraph, flat, loc.span.Start, loc.span.End)
	if err != nil {
		// The resolver produced the span from the same flat view, so
		// this cannot happen short of a defect; treat it as not found
		// rather than abort the batch.
		logger.Warn("finding %d: span isolation failed: %v", f.ID, err)
		return domain.EditOutcome{FindingID: f.ID, Status: domain.StatusSkippedNotFound}
	}

	status, err := apply.Edit(doc, loc.paragraph, matched, f.SuggestedReplacement, apply.Options{
		Mode:   mode,
		Policy: policy,
		Now:    s.now().UTC(),
	})
	if err != nil {
		logger.Warn("finding %d: edit failed: %v", f.ID, err)
		return domain.EditOutcome{FindingID: f.ID, Status: domain.StatusSkippedNotFound}
	}

	outcome := domain.EditOutcome{FindingID: f.ID, Status: status}
	if status == domain.StatusApplied {
		outcome.Span = &domain.MatchSpan{
			ParagraphIndex: loc.paraIndex,
			Start:          loc.span.Start,
			End:            loc.span.End,
			Confidence:     loc.span.Confidence,
			Score:          loc.span.Score,
		}
		logger.Debug("finding %d: applied at paragraph %d [%d,%d) via %s match",
			f.ID, loc.paraIndex, loc.span.Start, loc.span.End, loc.span.Confidence)
	}
	return outcome
}

// orderByPosition sorts findings by their initially resolved document
// position so earlier edits cannot shift offsets needed by later ones.
// Unlocatable findings keep their input order at the end.
func orderByPosition(findings []domain.Finding, paragraphs []*domain.Paragraph, opts resolve.Options) []domain.Finding {
	type positioned struct {
		finding domain.Finding
		input   int
		located bool
		para    int
		start   int
	}

	items := make([]positioned, len(findings))
	for i, f := range findings {
		items[i] = positioned{finding: f, input: i}
		if !f.Locatable() {
			continue
		}
		if loc, ok := locate(paragraphs, f.Citation, opts); ok {
			items[i].located = true
			items[i].para = loc.paraIndex
			items[i].start = loc.span.Start
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.located != b.located {
			return a.located
		}
		if !a.located {
			return a.input < b.input
		}
		if a.para != b.para {
			return a.para < b.para
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.input < b.input
	})

	out := make([]domain.Finding, len(items))
	for i, item := range items {
		out[i] = item.finding
	}
	return out
}

// locate finds the best span for a citation across all paragraphs.
// Candidates are compared by confidence rank, then score, then
// document order, so the result is deterministic; an exact match ends
// the scan since nothing can outrank it and leftmost wins.
func locate(paragraphs []*domain.Paragraph, citation string, opts resolve.Options) (location, bool) {
	var best location
	found := false
	for i, p := range paragraphs {
		flat := flatten.Paragraph(p)
		span, ok := resolve.Resolve(flat.Text(), citation, opts)
		if !ok {
			continue
		}
		candidate := location{paragraph: p, paraIndex: i, span: span}
		if !found || better(candidate.span, best.span) {
			best = candidate
			found = true
		} else if sameQuality(candidate.span, best.span) && span.Confidence == domain.ConfidenceFuzzy {
			// Equally-good fuzzy candidates in two paragraphs: keep the
			// leftmost but flag the ambiguity.
			best.span.Ambiguous = true
		}
		if best.span.Confidence == domain.ConfidenceExact {
			break
		}
	}
	return best, found
}

func better(a, b resolve.Span) bool {
	if a.Confidence.Rank() != b.Confidence.Rank() {
		return a.Confidence.Rank() > b.Confidence.Rank()
	}
	return a.Score > b.Score
}

func sameQuality(a, b resolve.Span) bool {
	return a.Confidence.Rank() == b.Confidence.Rank() && a.Score == b.Score
}

// resolverOptions derives the matcher gating from mode and policy:
// tracked output is reviewed by a human anyway, so it always attempts
// the case-insensitive fallback; clean output only does so when the
// policy asks for it.
func resolverOptions(mode domain.Mode, policy domain.Policy) resolve.Options {
	return resolve.Options{
		IgnoreCase: policy.IgnoreCase || mode == domain.ModeTracked,
		FuzzyFloor: policy.EffectiveFuzzyFloor(),
	}
}

// ReviewFiles loads the document and findings, produces each requested
// variant from its own clone, writes the outputs and persists one
// ledger per variant.
func (s *ReviewService) ReviewFiles(ctx context.Context, req driving.ReviewFilesRequest) (*driving.ReviewFilesReport, error) {
	if len(req.Modes) == 0 {
		return nil, fmt.Errorf("%w: no modes requested", domain.ErrInvalidInput)
	}

	doc, err := s.codec.LoadFile(ctx, req.DocumentPath)
	if err != nil {
		return nil, err
	}
	batch, err := s.findings.LoadFile(ctx, req.FindingsPath)
	if err != nil {
		return nil, err
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.DocumentPath)
	}

	report := &driving.ReviewFilesReport{}
	for _, mode := range req.Modes {
		mutated, outcomes, err := s.Review(ctx, doc, batch, mode, req.Policy)
		if err != nil {
			return nil, err
		}

		outPath := filepath.Join(outDir, variantName(req.DocumentPath, mode))
		if err := s.codec.SaveFile(ctx, mutated, outPath); err != nil {
			return nil, fmt.Errorf("writing %s variant: %w", mode, err)
		}

		result := domain.ReviewResult{
			ID:           uuid.New().String(),
			DocumentName: filepath.Base(req.DocumentPath),
			Mode:         mode,
			Author:       req.Policy.EffectiveAuthor(),
			Outcomes:     outcomes,
			CreatedAt:    s.now().UTC(),
		}
		if s.results != nil {
			if err := s.results.Save(ctx, result); err != nil {
				logger.Warn("persisting review result: %v", err)
			}
		}

		report.Results = append(report.Results, result)
		report.OutputPaths = append(report.OutputPaths, outPath)
	}
	return report, nil
}

// variantName derives the output file name for a mode:
// contract.docx -> contract_tracked.docx / contract_clean.docx.
func variantName(documentPath string, mode domain.Mode) string {
	base := filepath.Base(documentPath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + string(mode) + ext
}
