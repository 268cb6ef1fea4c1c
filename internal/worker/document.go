package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gyeh/intake-recon/internal/document"
	"github.com/gyeh/intake-recon/internal/logging"
	"github.com/gyeh/intake-recon/internal/lookup"
	"github.com/gyeh/intake-recon/internal/npi"
	"github.com/gyeh/intake-recon/internal/progress"
	"github.com/gyeh/intake-recon/internal/reconcile"
	"github.com/gyeh/intake-recon/internal/record"
	"github.com/gyeh/intake-recon/internal/source"
	"go.uber.org/zap"
)

// Status is the outcome of processing one document.
type Status string

const (
	StatusReconciled       Status = "reconciled"
	StatusNoMatch          Status = "no_match"
	StatusEmptyIdentity    Status = "empty_identity"
	StatusExtractionFailed Status = "extraction_failed"
)

// DocumentResult holds the outcome of processing a single document.
type DocumentResult struct {
	Document string
	Status   Status
	Fields   record.ExtractedFields
	// Result is set only when Status is StatusReconciled.
	Result   *reconcile.Result
	Referrer *npi.Verification
	Err      error
}

// process runs one document through open → decode → extract → match →
// reconcile.
func (b *Batch) process(ctx context.Context, loc string, tracker progress.Tracker) *DocumentResult {
	result := &DocumentResult{Document: loc}
	log := b.Logger.With(zap.String("document", loc))

	fail := func(err error) *DocumentResult {
		result.Status = StatusExtractionFailed
		result.Err = err
		log.Error("Document could not be processed", zap.Error(err))
		return result
	}

	tracker.SetStage("Opening")
	rc, err := b.Opener.Open(ctx, loc)
	if err != nil {
		return fail(fmt.Errorf("open: %w", err))
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fail(fmt.Errorf("read: %w", err))
	}

	tracker.SetStage("Decoding")
	text, err := document.Decode(source.Name(loc), data)
	if err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}

	tracker.SetStage("Extracting")
	fields, err := b.Extractor.Extract(text, logging.Observer(b.Logger, loc))
	if err != nil {
		return fail(err)
	}
	result.Fields = fields
	if fields.Get(record.DateOfBirth).State == record.Invalid {
		log.Warn("Date of Birth has an invalid format", zap.String("value", fields.Get(record.DateOfBirth).Text))
	}

	b.verifyReferrer(ctx, log, result)

	tracker.SetStage("Matching")
	ref, err := lookup.Match(fields, b.Index)
	switch {
	case errors.Is(err, lookup.ErrEmptyIdentity):
		result.Status = StatusEmptyIdentity
		result.Err = err
		log.Warn("No first name found in document")
		return result
	case errors.Is(err, lookup.ErrNoMatch):
		result.Status = StatusNoMatch
		result.Err = err
		log.Info(fmt.Sprintf("No match found for: %s %s",
			fields.Text(record.FirstName), fields.Text(record.LastName)))
		return result
	case err != nil:
		return fail(fmt.Errorf("match: %w", err))
	}

	tracker.SetStage("Reconciling")
	rec := reconcile.Reconcile(fields, ref)
	result.Status = StatusReconciled
	result.Result = &rec
	logReconciled(log, fields, rec)

	return result
}

func logReconciled(log *zap.Logger, fields record.ExtractedFields, rec reconcile.Result) {
	matchFields := []zap.Field{
		zap.String("name", rec.FullName),
		zap.String("account_number", rec.AccountNumber),
		zap.Int("row", rec.Record.Row),
	}
	for _, f := range []struct {
		key   string
		field record.Field
	}{
		{"ssn", record.SocialSecurity},
		{"policy", record.InsurancePolicy},
		{"referring_physician", record.ReferringPhysician},
	} {
		if v := fields.Text(f.field); v != "" {
			matchFields = append(matchFields, zap.String(f.key, v))
		}
	}
	log.Info("Match found", matchFields...)

	for _, m := range rec.Mismatches {
		log.Warn(fmt.Sprintf("%s mismatch, verify manually", m.Column.DisplayName()),
			zap.String("reference", m.Reference),
			zap.String("extracted", m.Extracted))
	}
	if rec.NeedsUpdate() {
		log.Info("Update needed: " + strings.Join(rec.Updates, ", "))
	}
}

// verifyReferrer records the registry outcome for the extracted referring
// physician. Lookup failures are logged and never change the document status.
func (b *Batch) verifyReferrer(ctx context.Context, log *zap.Logger, result *DocumentResult) {
	if b.Verifier == nil {
		return
	}
	name := result.Fields.Text(record.ReferringPhysician)
	if name == "" {
		return
	}
	v, err := b.Verifier.Verify(ctx, name)
	if err != nil {
		log.Warn("Referring physician lookup failed", zap.String("referring_physician", name), zap.Error(err))
		return
	}
	result.Referrer = v
	log.Info("Referring physician checked",
		zap.String("referring_physician", name),
		zap.String("status", v.Status),
		zap.Int("candidates", len(v.Candidates)))
}

// displayName returns the short name shown in progress output.
func displayName(loc string) string {
	name := loc
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return loc
	}
	return name
}
