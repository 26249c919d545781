package audit

import (
	"errors"
	"testing"
	"time"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

var now = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func docs(statuses ...domain.DocStatus) []domain.DocumentItem {
	out := make([]domain.DocumentItem, len(statuses))
	for i, s := range statuses {
		out[i] = domain.DocumentItem{ID: string(rune('a' + i)), Status: s}
	}
	return out
}

func sampleCompany(t *testing.T) domain.Company {
	t.Helper()
	c, err := NewCompany(NewCompanyInput{Name: "Örnek Tekstil", Email: "kalite@ornek.com.tr"}, now)
	if err != nil {
		t.Fatalf("NewCompany: %v", err)
	}
	return c
}

func TestCompletionPercentage(t *testing.T) {
	cases := []struct {
		name string
		docs []domain.DocumentItem
		want int
	}{
		{"empty", nil, 100},
		{"two of three", docs(domain.DocReceived, domain.DocNA, domain.DocPending), 67},
		{"issue counts as missing", docs(domain.DocIssue, domain.DocReceived), 50},
		{"none", docs(domain.DocPending, domain.DocIssue, domain.DocPending), 0},
		{"all", docs(domain.DocNA, domain.DocReceived), 100},
		{"one of three", docs(domain.DocReceived, domain.DocPending, domain.DocPending), 33},
	}
	for _, tc := range cases {
		if got := CompletionPercentage(tc.docs); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestMissingDocumentsKeepsOrder(t *testing.T) {
	in := docs(domain.DocIssue, domain.DocReceived, domain.DocPending, domain.DocNA)
	got := MissingDocuments(in)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(docs(domain.DocIssue, domain.DocReceived, domain.DocPending, domain.DocNA))
	want := Stats{Completed: 2, Pending: 1, Issues: 1, Percentage: 50}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
}

func TestNewCompanyDefaults(t *testing.T) {
	c := sampleCompany(t)
	if c.ID == "" {
		t.Error("id not generated")
	}
	if c.DischargeType != domain.IndirectPre || c.IsLowVolume {
		t.Errorf("unexpected configuration %s/%v", c.DischargeType, c.IsLowVolume)
	}
	if c.Status != domain.StatusNoDocs {
		t.Errorf("status = %s", c.Status)
	}
	if len(c.Documents) != len(requirements.Resolve(domain.IndirectPre, false)) {
		t.Errorf("documents = %d", len(c.Documents))
	}
	if !c.AuditOpeningDate.Equal(now) {
		t.Errorf("opening = %v", c.AuditOpeningDate)
	}
	if c.DeadlineDate == nil || !c.DeadlineDate.Equal(now.AddDate(0, 0, DefaultDeadlineDays)) {
		t.Errorf("deadline = %v", c.DeadlineDate)
	}
	if c.AuditClosingDate != nil {
		t.Error("closing date set on new company")
	}
	other := sampleCompany(t)
	if other.ID == c.ID {
		t.Error("ids collide")
	}
}

func TestNewCompanyRejectsBadContact(t *testing.T) {
	bad := []NewCompanyInput{
		{Name: "", Email: "a@firma.com"},
		{Name: "Firma", Email: "not-an-email"},
		{Name: "Firma", Email: "a@intranet"},
		{Name: "Firma", Email: "info@firma.local"},
		{Name: "Firma", Email: "ops@localhost"},
	}
	for _, in := range bad {
		if _, err := NewCompany(in, now); !errors.Is(err, ErrInvalidContact) {
			t.Errorf("NewCompany(%+v) err = %v", in, err)
		}
	}
}

func TestSetStatusClosingDate(t *testing.T) {
	c := sampleCompany(t)

	closed, err := SetStatus(c, domain.StatusClosed, now)
	if err != nil {
		t.Fatal(err)
	}
	if closed.AuditClosingDate == nil || !closed.AuditClosingDate.Equal(now) {
		t.Fatalf("closing date = %v", closed.AuditClosingDate)
	}

	later := now.Add(48 * time.Hour)
	again, _ := SetStatus(closed, domain.StatusClosed, later)
	if !again.AuditClosingDate.Equal(now) {
		t.Errorf("closing date overwritten: %v", again.AuditClosingDate)
	}
	if !again.LastUpdated.Equal(later) {
		t.Errorf("lastUpdated = %v", again.LastUpdated)
	}

	reopened, _ := SetStatus(again, domain.StatusMissingShared, later)
	if reopened.AuditClosingDate != nil {
		t.Error("closing date not cleared")
	}
	if closed.AuditClosingDate == nil {
		t.Error("input mutated")
	}

	if _, err := SetStatus(c, "ARCHIVED", now); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestReconfigureMergesDocuments(t *testing.T) {
	c := sampleCompany(t)
	issue := domain.DocIssue
	finding := "X"
	c, err := UpdateDocument(c, "1.1", DocumentPatch{Status: &issue, Finding: &finding}, now)
	if err != nil {
		t.Fatal(err)
	}
	later := now.Add(time.Hour)
	out, err := Reconfigure(c, domain.ZLD, true, later)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Documents) != 2 {
		t.Fatalf("documents = %d", len(out.Documents))
	}
	if out.Documents[0].Status != domain.DocIssue || out.Documents[0].Finding != "X" {
		t.Errorf("1.1 not preserved: %+v", out.Documents[0])
	}
	if out.Documents[1].Status != domain.DocPending {
		t.Errorf("1.2 = %+v", out.Documents[1])
	}
	if !out.LastUpdated.Equal(later) || out.DischargeType != domain.ZLD || !out.IsLowVolume {
		t.Errorf("unexpected company %+v", out)
	}
}

func TestUpdateDocument(t *testing.T) {
	c := sampleCompany(t)
	received := domain.DocReceived
	notes := "e-posta ile geldi"
	out, err := UpdateDocument(c, "1.2", DocumentPatch{Status: &received, Notes: &notes}, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	d, _, _ := out.Document("1.2")
	if d.Status != domain.DocReceived || d.Notes != notes {
		t.Errorf("doc = %+v", d)
	}
	if orig, _, _ := c.Document("1.2"); orig.Status != domain.DocPending {
		t.Error("input mutated")
	}
	if _, err := UpdateDocument(c, "9.9", DocumentPatch{Status: &received}, now); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("err = %v", err)
	}
	bogus := domain.DocStatus("LOST")
	if _, err := UpdateDocument(c, "1.2", DocumentPatch{Status: &bogus}, now); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestExtendDeadline(t *testing.T) {
	c := sampleCompany(t)
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c = SetDeadline(c, &d, now)

	out, changed := ExtendDeadline(c, now)
	if !changed {
		t.Fatal("expected change")
	}
	if want := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC); !out.DeadlineDate.Equal(want) {
		t.Errorf("deadline = %v, want %v", out.DeadlineDate, want)
	}

	cleared := SetDeadline(c, nil, now)
	same, changed := ExtendDeadline(cleared, now.Add(time.Hour))
	if changed || same.DeadlineDate != nil || !same.LastUpdated.Equal(cleared.LastUpdated) {
		t.Errorf("extend without deadline changed company: %+v", same)
	}

	zero := time.Time{}
	invalid := cleared
	invalid.DeadlineDate = &zero
	if _, changed := ExtendDeadline(invalid, now); changed {
		t.Error("extend with invalid deadline should be a no-op")
	}
}

func TestForceTerminate(t *testing.T) {
	c := sampleCompany(t)
	out := ForceTerminate(c, now.Add(time.Hour))
	if out.Status != domain.StatusMissingShared {
		t.Errorf("status = %s", out.Status)
	}
	if out.AuditClosingDate == nil || !out.AuditClosingDate.Equal(now.Add(time.Hour)) {
		t.Errorf("closing = %v", out.AuditClosingDate)
	}
	if !out.LastUpdated.Equal(now.Add(time.Hour)) {
		t.Errorf("lastUpdated = %v", out.LastUpdated)
	}
}

func TestClassifyDeadline(t *testing.T) {
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }
	zero := time.Time{}
	cases := []struct {
		name     string
		deadline *time.Time
		kind     DeadlineKind
		days     int
		label    string
	}{
		{"unset", nil, DeadlineUnset, 0, "Belirlenmedi"},
		{"invalid", &zero, DeadlineInvalid, 0, "Hatalı Tarih"},
		{"overdue", at(-49 * time.Hour), DeadlineOverdue, -2, "2 Gün Gecikti"},
		{"later today", at(2 * time.Hour), DeadlineNearDue, 1, "1 Gün Kaldı"},
		{"just passed", at(-2 * time.Hour), DeadlineNearDue, 0, "0 Gün Kaldı"},
		{"three days", at(72 * time.Hour), DeadlineNearDue, 3, "3 Gün Kaldı"},
		{"four days", at(73 * time.Hour), DeadlineOnTrack, 4, "4 Gün Kaldı"},
	}
	for _, tc := range cases {
		got := ClassifyDeadline(tc.deadline, now)
		if got.Kind != tc.kind || got.Days != tc.days || got.Label != tc.label {
			t.Errorf("%s: got %+v", tc.name, got)
		}
	}
}

func TestUpdateContact(t *testing.T) {
	c := sampleCompany(t)
	name := "  Yeni Ad "
	id := " INX-42 "
	out, err := UpdateContact(c, ContactPatch{Name: &name, AuditID: &id}, now)
	if err != nil {
		t.Fatal(err)
	}
	if out.Name != "Yeni Ad" || out.AuditID != "INX-42" || out.Email != c.Email {
		t.Errorf("got %+v", out)
	}
	bad := "nope"
	if _, err := UpdateContact(c, ContactPatch{Email: &bad}, now); !errors.Is(err, ErrInvalidContact) {
		t.Errorf("err = %v", err)
	}
}
