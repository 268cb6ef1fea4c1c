package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gyeh/intake-recon/internal/cloud"
	"github.com/gyeh/intake-recon/internal/npi"
	"github.com/gyeh/intake-recon/internal/record"
	"github.com/gyeh/intake-recon/internal/worker"
)

var stdout io.Writer = os.Stdout

// Uploader stores the report in object storage.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// Report is the JSON document written at the end of a run.
type Report struct {
	Summary   worker.Summary `json:"summary"`
	Documents []Document     `json:"documents"`
}

// Document is the report entry for one processed document.
type Document struct {
	Document   string                  `json:"document"`
	Status     worker.Status           `json:"status"`
	Fields     *record.ExtractedFields `json:"fields,omitempty"`
	Match      *Match                  `json:"match,omitempty"`
	Mismatches []Mismatch              `json:"mismatches,omitempty"`
	Updates    []string                `json:"updates,omitempty"`
	Referrer   *npi.Verification       `json:"referrer,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Match identifies the reference record a document was reconciled against.
type Match struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	Row           int    `json:"row"`
}

// Mismatch is a field that needs manual verification.
type Mismatch struct {
	Column    string `json:"column"`
	Reference string `json:"reference"`
	Extracted string `json:"extracted"`
}

// NewReport converts batch results into a report.
func NewReport(summary worker.Summary, results []worker.DocumentResult) Report {
	docs := make([]Document, 0, len(results))
	for _, r := range results {
		d := Document{
			Document: r.Document,
			Status:   r.Status,
			Referrer: r.Referrer,
		}
		if r.Status != worker.StatusExtractionFailed {
			fields := r.Fields
			d.Fields = &fields
		}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		if res := r.Result; res != nil {
			d.Match = &Match{
				Name:          res.FullName,
				AccountNumber: res.AccountNumber,
				Row:           res.Record.Row,
			}
			d.Updates = res.Updates
			for _, m := range res.Mismatches {
				d.Mismatches = append(d.Mismatches, Mismatch{
					Column:    m.Column.Header(),
					Reference: m.Reference,
					Extracted: m.Extracted,
				})
			}
		}
		docs = append(docs, d)
	}
	return Report{Summary: summary, Documents: docs}
}

// WriteReport writes the report as indented JSON to outputPath: a local
// file, "-" for stdout, or an s3:// URI through up.
func WriteReport(ctx context.Context, outputPath string, report Report, up Uploader) error {
	if report.Documents == nil {
		report.Documents = []Document{}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	switch {
	case outputPath == "-":
		_, err = stdout.Write(data)
		fmt.Fprintln(stdout)
		return err
	case cloud.IsS3(outputPath):
		if up == nil {
			return fmt.Errorf("no S3 client configured for %s", outputPath)
		}
		bucket, key, err := cloud.ParseS3URI(outputPath)
		if err != nil {
			return err
		}
		return up.Upload(ctx, bucket, key, data, "application/json")
	}

	return os.WriteFile(outputPath, data, 0o644)
}
