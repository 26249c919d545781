package store

import (
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Revision is one saved change to a company record, as a diff-match-patch
// text patch from the previous record to the new one.
type Revision struct {
	ID        int64     `json:"id"`
	CompanyID string    `json:"companyId"`
	At        time.Time `json:"at"`
	Patch     string    `json:"patch"`
}

// RevisionPatch returns the patch turning prev into next, or "" when they
// are equal.
func RevisionPatch(prev, next string) string {
	if prev == next {
		return ""
	}
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(prev, next))
}
