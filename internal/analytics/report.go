package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"audittrack-engine/internal/domain"
)

// ClosedAudit is one closed company with its measured duration.
type ClosedAudit struct {
	CompanyID    string    `json:"companyId"`
	AuditID      string    `json:"auditId,omitempty"`
	Name         string    `json:"name"`
	OpenedAt     time.Time `json:"openedAt"`
	ClosedAt     time.Time `json:"closedAt"`
	BusinessDays int       `json:"businessDays"`
}

type MonthlyAverage struct {
	Key     string  `json:"key"` // YYYY-MM
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Report struct {
	TotalClosed int              `json:"totalClosed"`
	AverageDays float64          `json:"averageDays"`
	Monthly     []MonthlyAverage `json:"monthly"`
	Fastest     *ClosedAudit     `json:"fastest,omitempty"`
	Slowest     *ClosedAudit     `json:"slowest,omitempty"`
	// History is ordered by closing date, most recent first.
	History []ClosedAudit `json:"history"`
}

// ClosedAudits returns the CLOSED companies with usable opening and closing
// dates, in input order. Dates are converted to loc so every record is
// measured on the same calendar.
func ClosedAudits(companies []domain.Company, loc *time.Location) []ClosedAudit {
	if loc == nil {
		loc = time.UTC
	}
	var out []ClosedAudit
	for _, c := range companies {
		if c.Status != domain.StatusClosed || c.AuditOpeningDate.IsZero() || !domain.ValidDate(c.AuditClosingDate) {
			continue
		}
		out = append(out, ClosedAudit{
			CompanyID:    c.ID,
			AuditID:      c.AuditID,
			Name:         c.Name,
			OpenedAt:     c.AuditOpeningDate.In(loc),
			ClosedAt:     c.AuditClosingDate.In(loc),
			BusinessDays: BusinessDaysBetween(c.AuditOpeningDate, *c.AuditClosingDate, loc),
		})
	}
	return out
}

// Summarize builds the closure-duration report. Companies that are not
// closed, or lack valid dates, are left out entirely. Months and business
// days follow the calendar of loc.
func Summarize(companies []domain.Company, loc *time.Location) Report {
	closed := ClosedAudits(companies, loc)
	r := Report{TotalClosed: len(closed), Monthly: []MonthlyAverage{}, History: []ClosedAudit{}}
	if len(closed) == 0 {
		return r
	}

	total := 0
	type bucket struct{ sum, n int }
	months := map[string]*bucket{}
	fastest, slowest := 0, 0
	for i, a := range closed {
		total += a.BusinessDays
		key := a.ClosedAt.Format("2006-01")
		b, ok := months[key]
		if !ok {
			b = &bucket{}
			months[key] = b
		}
		b.sum += a.BusinessDays
		b.n++
		if a.BusinessDays < closed[fastest].BusinessDays {
			fastest = i
		}
		if a.BusinessDays >= closed[slowest].BusinessDays {
			slowest = i
		}
	}
	r.AverageDays = round1(float64(total) / float64(len(closed)))

	for key, b := range months {
		r.Monthly = append(r.Monthly, MonthlyAverage{
			Key:     key,
			Label:   monthLabel(key),
			Average: round1(float64(b.sum) / float64(b.n)),
			Count:   b.n,
		})
	}
	sort.Slice(r.Monthly, func(i, j int) bool { return r.Monthly[i].Key < r.Monthly[j].Key })

	f, s := closed[fastest], closed[slowest]
	r.Fastest, r.Slowest = &f, &s

	r.History = append(r.History, closed...)
	sort.SliceStable(r.History, func(i, j int) bool { return r.History[i].ClosedAt.After(r.History[j].ClosedAt) })
	return r
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

var trMonths = [...]string{"Oca", "Şub", "Mar", "Nis", "May", "Haz", "Tem", "Ağu", "Eyl", "Eki", "Kas", "Ara"}

// monthLabel renders "2024-01" as "Oca 24".
func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %02d", trMonths[t.Month()-1], t.Year()%100)
}
