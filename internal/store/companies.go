package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"audittrack-engine/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Companies persists company records in sqlite, one JSON document per row.
type Companies struct {
	db  *sql.DB
	now func() time.Time
}

func NewCompanies(db *DB) *Companies {
	return &Companies{db: db.Pool, now: time.Now}
}

// List returns every company, most recently updated first. Rows that cannot
// be decoded are skipped.
func (s *Companies) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, record
FROM companies
ORDER BY last_updated DESC;`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	now := s.now()
	out := []domain.Company{}
	for rows.Next() {
		var id, record string
		if err := rows.Scan(&id, &record); err != nil {
			return nil, err
		}
		c, err := DecodeRecord([]byte(record), now)
		if err != nil {
			continue
		}
		if c.ID == "" {
			c.ID = id
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Companies) Get(ctx context.Context, id string) (domain.Company, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM companies WHERE id = ?;`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, ErrNotFound
	}
	if err != nil {
		return domain.Company{}, err
	}
	c, err := DecodeRecord([]byte(record), s.now())
	if err != nil {
		return domain.Company{}, err
	}
	if c.ID == "" {
		c.ID = id
	}
	return c, nil
}

// Save writes the full record, replacing any previous version, and records
// the change as a revision.
func (s *Companies) Save(ctx context.Context, c domain.Company) (err error) {
	if c.ID == "" {
		return errors.New("company id is required")
	}
	b, err := EncodeRecord(c)
	if err != nil {
		return err
	}
	next := string(b)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT record FROM companies WHERE id = ?;`, c.ID).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO companies(id, record, last_updated)
VALUES(?,?,?)
ON CONFLICT(id) DO UPDATE SET
  record = excluded.record,
  last_updated = excluded.last_updated;`,
		c.ID, next, sortKey(c.LastUpdated)); err != nil {
		return fmt.Errorf("save company %s: %w", c.ID, err)
	}

	if patch := RevisionPatch(prev, next); patch != "" {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO company_revisions(company_id, at, patch)
VALUES(?,?,?);`, c.ID, sortKey(s.now()), patch); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the company and its revisions. Deleting a missing id is not
// an error.
func (s *Companies) Delete(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM companies WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete company %s: %w", id, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM company_revisions WHERE company_id = ?;`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Revisions lists the most recent changes to a company, newest first.
func (s *Companies) Revisions(ctx context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, company_id, at, patch
FROM company_revisions
WHERE company_id = ?
ORDER BY id DESC
LIMIT ?;`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Revision{}
	for rows.Next() {
		var r Revision
		var at string
		if err := rows.Scan(&r.ID, &r.CompanyID, &at, &r.Patch); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}
