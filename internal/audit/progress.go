// Package audit holds the pure transitions and derived views over a company
// audit. Every function returns a new value and leaves its input untouched.
package audit

import (
	"math"

	"audittrack-engine/internal/domain"
)

// CompletionPercentage is the share of documents that are received or not
// applicable, rounded to a whole percent. An empty checklist is complete.
func CompletionPercentage(docs []domain.DocumentItem) int {
	if len(docs) == 0 {
		return 100
	}
	done := 0
	for _, d := range docs {
		if d.Status.Satisfied() {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(docs)) * 100))
}

// MissingDocuments returns the pending and deficient documents in order.
func MissingDocuments(docs []domain.DocumentItem) []domain.DocumentItem {
	out := make([]domain.DocumentItem, 0, len(docs))
	for _, d := range docs {
		if d.Status.Outstanding() {
			out = append(out, d)
		}
	}
	return out
}

type Stats struct {
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	Issues     int `json:"issues"`
	Percentage int `json:"percentage"`
}

// Summarize counts documents per outcome for dashboard rows.
func Summarize(docs []domain.DocumentItem) Stats {
	var s Stats
	for _, d := range docs {
		switch {
		case d.Status.Satisfied():
			s.Completed++
		case d.Status == domain.DocPending:
			s.Pending++
		case d.Status == domain.DocIssue:
			s.Issues++
		}
	}
	s.Percentage = CompletionPercentage(docs)
	return s
}
