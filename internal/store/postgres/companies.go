package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/store"
)

type Companies struct {
	db  *DB
	now func() time.Time
}

func NewCompanies(db *DB) *Companies {
	return &Companies{db: db, now: time.Now}
}

func (s *Companies) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id, record FROM companies ORDER BY last_updated DESC`)
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
		c, err := store.DecodeRecord([]byte(record), now)
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
	err := s.db.Pool.QueryRow(ctx, `SELECT record FROM companies WHERE id = $1`, id).Scan(&record)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Company{}, err
	}
	return store.DecodeRecord([]byte(record), s.now())
}

func (s *Companies) Save(ctx context.Context, c domain.Company) (err error) {
	if c.ID == "" {
		return errors.New("company id is required")
	}
	b, err := store.EncodeRecord(c)
	if err != nil {
		return err
	}
	next := string(b)

	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var prev string
	err = tx.QueryRow(ctx, `SELECT record FROM companies WHERE id = $1 FOR UPDATE`, c.ID).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	err = nil

	if _, err = tx.Exec(ctx, `
        INSERT INTO companies (id, record, last_updated)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, last_updated = EXCLUDED.last_updated
    `, c.ID, next, c.LastUpdated); err != nil {
		return fmt.Errorf("save company %s: %w", c.ID, err)
	}
	if patch := store.RevisionPatch(prev, next); patch != "" {
		if _, err = tx.Exec(ctx, `
            INSERT INTO company_revisions (company_id, at, patch) VALUES ($1, $2, $3)
        `, c.ID, s.now(), patch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Companies) Delete(ctx context.Context, id string) (err error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	if _, err = tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete company %s: %w", id, err)
	}
	_, err = tx.Exec(ctx, `DELETE FROM company_revisions WHERE company_id = $1`, id)
	return err
}

func (s *Companies) Revisions(ctx context.Context, id string, limit int) ([]store.Revision, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.Pool.Query(ctx, `
        SELECT id, company_id, at, patch FROM company_revisions
        WHERE company_id = $1 ORDER BY id DESC LIMIT $2
    `, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []store.Revision{}
	for rows.Next() {
		var r store.Revision
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.At, &r.Patch); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
