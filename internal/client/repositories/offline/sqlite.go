package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, e Entry) error {
	query := `INSERT INTO offline_items (uuid, path, size, stored_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(uuid) DO UPDATE SET
				path = excluded.path,
				size = excluded.size,
				stored_at = excluded.stored_at`

	_, err := r.db.ExecContext(ctx, query, e.FileID, e.Path, e.Size, e.StoredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to add offline item %s: %w", e.FileID, err)
	}
	return nil
}

func scanEntry(s interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	var storedAt int64
	if err := s.Scan(&e.FileID, &e.Path, &e.Size, &storedAt); err != nil {
		return Entry{}, err
	}
	e.StoredAt = time.UnixMilli(storedAt).UTC()
	return e, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, fileID string) (Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT uuid, path, size, stored_at FROM offline_items WHERE uuid = ?`, fileID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("offline item %s: %w", fileID, common.ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get offline item %s: %w", fileID, err)
	}
	return e, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offline_items WHERE uuid = ?`, fileID); err != nil {
		return fmt.Errorf("failed to remove offline item %s: %w", fileID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Entry, error) {
	res, err := dbx.QueryAll(ctx, r.db, func(rows *sql.Rows) (Entry, error) {
		return scanEntry(rows)
	}, `SELECT uuid, path, size, stored_at FROM offline_items ORDER BY stored_at DESC, uuid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list offline items: %w", err)
	}
	return res, nil
}
