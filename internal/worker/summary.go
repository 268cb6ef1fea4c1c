package worker

import "time"

// Summary aggregates the outcome of a batch run.
type Summary struct {
	Found         int           `json:"found"`
	Attempted     int           `json:"attempted"`
	Processed     int           `json:"processed"`
	Reconciled    int           `json:"reconciled"`
	NoMatch       int           `json:"no_match"`
	EmptyIdentity int           `json:"empty_identity"`
	Failed        int           `json:"failed"`
	Mismatched    int           `json:"mismatched"`
	NeedingUpdate int           `json:"needing_update"`
	Duration      time.Duration `json:"-"`
	DurationText  string        `json:"duration"`
}

// Summarize counts results by status. found is the number of documents
// located before the run started. Attempted counts every result; Processed
// leaves out documents whose text could not be extracted.
func Summarize(found int, results []DocumentResult, duration time.Duration) Summary {
	s := Summary{
		Found:        found,
		Attempted:    len(results),
		Duration:     duration,
		DurationText: duration.Truncate(time.Millisecond).String(),
	}
	for _, r := range results {
		switch r.Status {
		case StatusReconciled:
			s.Reconciled++
			if r.Result.NeedsReview() {
				s.Mismatched++
			}
			if r.Result.NeedsUpdate() {
				s.NeedingUpdate++
			}
		case StatusNoMatch:
			s.NoMatch++
		case StatusEmptyIdentity:
			s.EmptyIdentity++
		default:
			s.Failed++
		}
	}
	s.Processed = s.Attempted - s.Failed
	return s
}
