package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/dbx"
)

const itemColumns = `uuid, parent, name, type, mime, size, timestamp, last_modified, key, chunks, region, bucket, version, color`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, i models.Item) error {
	query := `INSERT OR REPLACE INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		i.ID, i.ParentID, i.Name, string(i.Kind), i.Mime, i.Size,
		i.CreatedAt, i.ModifiedAt, i.Key, i.ChunkCount, i.Region, i.Bucket, i.Version, i.Color)
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", i.ID, err)
	}
	return nil
}

func scanItem(s interface{ Scan(...any) error }) (models.Item, error) {
	var i models.Item
	var kind string
	err := s.Scan(&i.ID, &i.ParentID, &i.Name, &kind, &i.Mime, &i.Size,
		&i.CreatedAt, &i.ModifiedAt, &i.Key, &i.ChunkCount, &i.Region, &i.Bucket, &i.Version, &i.Color)
	i.Kind = models.Kind(kind)
	return i, err
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE uuid = ?`, id)

	i, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return i, nil
}

func (r *SQLiteRepository) ListByParent(ctx context.Context, parentID string) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE parent = ? AND name != '' AND uuid != parent
		ORDER BY CASE type WHEN 'folder' THEN 0 ELSE 1 END, name COLLATE NOCASE`

	res, err := dbx.QueryAll(ctx, r.db, func(rows *sql.Rows) (models.Item, error) {
		return scanItem(rows)
	}, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of %s: %w", parentID, err)
	}
	return res, nil
}

func (r *SQLiteRepository) SetColor(ctx context.Context, id, color string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE items SET color = ? WHERE uuid = ?`, color, id)
	if err != nil {
		return fmt.Errorf("failed to set color of %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE uuid = ?`, id); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}
