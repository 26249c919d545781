package audit

import (
	"fmt"
	"math"
	"time"
)

type DeadlineKind string

const (
	DeadlineUnset   DeadlineKind = "unset"
	DeadlineInvalid DeadlineKind = "invalid"
	DeadlineOverdue DeadlineKind = "overdue"
	DeadlineNearDue DeadlineKind = "near_due"
	DeadlineOnTrack DeadlineKind = "on_track"
)

// NearDueDays is the last day count still reported as near due.
const NearDueDays = 3

// DeadlineClass describes how much time is left until a deadline. Days is
// the whole days remaining (negative when overdue) and is only meaningful
// for the overdue, near-due and on-track kinds.
type DeadlineClass struct {
	Kind  DeadlineKind `json:"kind"`
	Days  int          `json:"days"`
	Label string       `json:"label"`
}

// ClassifyDeadline rounds the remaining time up to whole days.
func ClassifyDeadline(deadline *time.Time, now time.Time) DeadlineClass {
	if deadline == nil {
		return DeadlineClass{Kind: DeadlineUnset, Label: "Belirlenmedi"}
	}
	if deadline.IsZero() {
		return DeadlineClass{Kind: DeadlineInvalid, Label: "Hatalı Tarih"}
	}
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return DeadlineClass{Kind: DeadlineOverdue, Days: days, Label: fmt.Sprintf("%d Gün Gecikti", -days)}
	case days <= NearDueDays:
		return DeadlineClass{Kind: DeadlineNearDue, Days: days, Label: fmt.Sprintf("%d Gün Kaldı", days)}
	default:
		return DeadlineClass{Kind: DeadlineOnTrack, Days: days, Label: fmt.Sprintf("%d Gün Kaldı", days)}
	}
}
