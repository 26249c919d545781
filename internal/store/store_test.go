package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

func openTestStore(t *testing.T) *Companies {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewCompanies(db)
}

func company(id string, updated time.Time) domain.Company {
	deadline := updated.AddDate(0, 0, 14)
	return domain.Company{
		ID:               id,
		Name:             "Firma " + id,
		Email:            id + "@firma.com",
		DischargeType:    domain.Direct,
		Status:           domain.StatusNoDocs,
		Documents:        requirements.Resolve(domain.Direct, false),
		AuditOpeningDate: updated,
		DeadlineDate:     &deadline,
		LastUpdated:      updated,
	}
}

func TestSaveListGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, company(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("unexpected order: %v", list)
	}

	got, err := s.Get(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	want := company("b", base.Add(time.Hour))
	if got.Name != want.Name || got.DischargeType != domain.Direct || len(got.Documents) != len(want.Documents) {
		t.Errorf("got %+v", got)
	}
	if !got.DeadlineDate.Equal(*want.DeadlineDate) || !got.LastUpdated.Equal(want.LastUpdated) {
		t.Errorf("dates not preserved: %v %v", got.DeadlineDate, got.LastUpdated)
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestSaveRecordsRevisions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	c := company("a", base)
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	first, _ := EncodeRecord(c)

	c.Status = domain.StatusReadyToClose
	c.LastUpdated = base.Add(time.Hour)
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	// unchanged save adds nothing
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}

	revs, err := s.Revisions(ctx, "a", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 2 {
		t.Fatalf("revisions = %d", len(revs))
	}
	if !strings.Contains(revs[0].Patch, "READY_TO_CLOSE") {
		t.Errorf("latest patch does not mention new status: %q", revs[0].Patch)
	}
	second, _ := EncodeRecord(c)
	replayed, ok := applyRevision(string(first), revs[0].Patch)
	if !ok || replayed != string(second) {
		t.Errorf("patch did not replay cleanly")
	}
}

func TestDecodeRecordDefaults(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	c, err := DecodeRecord([]byte(`{"id":"x","name":"Eski Firma","documents":[{"id":"1.1","status":"RECEIVED"}]}`), now)
	if err != nil {
		t.Fatal(err)
	}
	if c.Status != domain.StatusNoDocs || c.DischargeType != domain.IndirectPre || c.IsLowVolume {
		t.Errorf("defaults not applied: %+v", c)
	}
	if !c.AuditOpeningDate.Equal(now) || !c.LastUpdated.Equal(now) {
		t.Errorf("date defaults: opening=%v updated=%v", c.AuditOpeningDate, c.LastUpdated)
	}
	d := c.Documents[0]
	if d.Finding != "" || d.CorrectiveAction != "" || d.Status != domain.DocReceived {
		t.Errorf("doc = %+v", d)
	}
	if d.Title != "1.1 Atıksu Bağlantı İzin Belgesi" {
		t.Errorf("title not filled from catalog: %q", d.Title)
	}
}

func TestDecodeRecordDateForms(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	raw := `{
	  "id": "x",
	  "dischargeType": "ZLD",
	  "status": "CLOSED",
	  "lastUpdated": {"seconds": 1717236000, "nanoseconds": 0},
	  "deadlineDate": "2024-06-10T00:00:00.000Z",
	  "auditClosingDate": 1717236000,
	  "documents": []
	}`
	c, err := DecodeRecord([]byte(raw), now)
	if err != nil {
		t.Fatal(err)
	}
	ts := time.Unix(1717236000, 0)
	if !c.LastUpdated.Equal(ts) {
		t.Errorf("lastUpdated = %v", c.LastUpdated)
	}
	if !c.AuditOpeningDate.Equal(ts) {
		t.Errorf("opening should fall back to lastUpdated, got %v", c.AuditOpeningDate)
	}
	if c.DeadlineDate == nil || !c.DeadlineDate.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("deadline = %v", c.DeadlineDate)
	}
	if c.AuditClosingDate == nil || !c.AuditClosingDate.Equal(ts) {
		t.Errorf("closing = %v", c.AuditClosingDate)
	}
	if c.DischargeType != domain.ZLD || c.Status != domain.StatusClosed {
		t.Errorf("enums = %s/%s", c.DischargeType, c.Status)
	}
}

func TestDecodeRecordInvalidDatesAreAbsent(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	c, err := DecodeRecord([]byte(`{"id":"x","deadlineDate":"yarın","auditClosingDate":null,"auditOpeningDate":"??"}`), now)
	if err != nil {
		t.Fatal(err)
	}
	if c.DeadlineDate != nil || c.AuditClosingDate != nil {
		t.Errorf("invalid dates kept: %v %v", c.DeadlineDate, c.AuditClosingDate)
	}
	if !c.AuditOpeningDate.Equal(now) {
		t.Errorf("opening = %v", c.AuditOpeningDate)
	}
}

func TestEncodeDecodeKeepsDocuments(t *testing.T) {
	c := company("a", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	c.Documents[0].Status = domain.DocIssue
	c.Documents[0].Finding = "imza yok"
	b, err := EncodeRecord(c)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeRecord(b, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if got.Documents[0].Status != domain.DocIssue || got.Documents[0].Finding != "imza yok" {
		t.Errorf("doc = %+v", got.Documents[0])
	}
	if got.Documents[4].Description != c.Documents[4].Description {
		t.Errorf("description changed: %q", got.Documents[4].Description)
	}
}

// applyRevision replays a patch produced by RevisionPatch onto prev.
func applyRevision(prev, patch string) (string, bool) {
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patch)
	if err != nil {
		return prev, false
	}
	out, applied := dmp.PatchApply(patches, prev)
	for _, ok := range applied {
		if !ok {
			return out, false
		}
	}
	return out, true
}
