package server

import (
	"context"
	"database/sql"
	"errors"

	"recordsrv/internal/shared"
)

// SQLiteStore persists records in the records table. Every value reaches
// SQLite as a bound parameter.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var rec Record
		var name sql.NullString
		if err := rows.Scan(&rec.ID, &name); err != nil {
			return nil, err
		}
		rec.Name = nullString(name)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, name FROM records WHERE id = ?`, id)

	var rec Record
	var name sql.NullString
	if err := row.Scan(&rec.ID, &name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Name = nullString(name)
	return rec, nil
}

func (s *SQLiteStore) Create(ctx context.Context, name string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `INSERT INTO records (name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, name string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE records SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Count is used by the dbcheck tool.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// Tables lists user tables, sqlite internals excluded.
func (s *SQLiteStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(ns sql.NullString) string {
	if !ns.Valid {
		return shared.NULL
	}
	return ns.String
}
