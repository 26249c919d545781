package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

// Runs against a disposable database named by AUDITTRACK_TEST_POSTGRES_URL.
func TestCompaniesRoundTrip(t *testing.T) {
	url := os.Getenv("AUDITTRACK_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("AUDITTRACK_TEST_POSTGRES_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	s := NewCompanies(db)
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := domain.Company{
		ID:               uuid.NewString(),
		Name:             "Postgres Firma",
		Email:            "info@firma.com",
		DischargeType:    domain.ZLD,
		Status:           domain.StatusNoDocs,
		Documents:        requirements.Resolve(domain.ZLD, true),
		AuditOpeningDate: now,
		LastUpdated:      now,
	}
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Cleanup(func() { _ = s.Delete(context.Background(), c.ID) })

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != c.Name || len(got.Documents) != 2 || !got.LastUpdated.Equal(now) {
		t.Errorf("got %+v", got)
	}

	c.Status = domain.StatusClosed
	c.LastUpdated = now.Add(time.Minute)
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	revs, err := s.Revisions(ctx, c.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 2 {
		t.Errorf("revisions = %d", len(revs))
	}
}
