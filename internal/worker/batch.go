package worker

import (
	"context"
	"io"

	"github.com/gyeh/intake-recon/internal/extract"
	"github.com/gyeh/intake-recon/internal/lookup"
	"github.com/gyeh/intake-recon/internal/npi"
	"github.com/gyeh/intake-recon/internal/progress"
	"go.uber.org/zap"
)

// DocumentOpener opens a document location for reading.
type DocumentOpener interface {
	Open(ctx context.Context, loc string) (io.ReadCloser, error)
}

// ReferrerVerifier looks up a referring physician name.
type ReferrerVerifier interface {
	Verify(ctx context.Context, name string) (*npi.Verification, error)
}

// Batch processes documents one at a time against a reference index.
type Batch struct {
	Opener    DocumentOpener
	Extractor *extract.Extractor
	Index     *lookup.Index
	Logger    *zap.Logger
	Progress  progress.Manager
	// Verifier is optional; when nil referring physicians are not checked.
	Verifier ReferrerVerifier
}

// Run processes every location in order and returns one result per document
// attempted. A failed document is recorded and the batch moves on. When ctx
// is cancelled, Run stops before the next document and returns the results
// gathered so far.
func (b *Batch) Run(ctx context.Context, locations []string) []DocumentResult {
	results := make([]DocumentResult, 0, len(locations))
	var reconciled, flagged int

	for i, loc := range locations {
		if ctx.Err() != nil {
			b.Logger.Warn("Run cancelled",
				zap.Int("processed", len(results)),
				zap.Int("remaining", len(locations)-i))
			break
		}

		tracker := b.Progress.NewTracker(i, len(locations), displayName(loc))
		result := b.process(ctx, loc, tracker)
		tracker.Done(string(result.Status))
		results = append(results, *result)

		if result.Status == StatusReconciled {
			reconciled++
			if result.Result.NeedsReview() || result.Result.NeedsUpdate() {
				flagged++
			}
		}
		b.Progress.SetOverallStats(len(results), reconciled, flagged)
	}

	return results
}
