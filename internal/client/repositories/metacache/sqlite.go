package metacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetFile(ctx context.Context, blob string) (models.FileMetadata, bool, error) {
	var md models.FileMetadata
	err := r.db.QueryRowContext(ctx,
		`SELECT name, size, mime, key, last_modified FROM decrypted_file_metadata WHERE used_metadata = ?`, blob).
		Scan(&md.Name, &md.Size, &md.Mime, &md.Key, &md.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FileMetadata{}, false, nil
	}
	if err != nil {
		return models.FileMetadata{}, false, fmt.Errorf("failed to get file metadata: %w", err)
	}
	return md, true, nil
}

func (r *SQLiteRepository) PutFile(ctx context.Context, blob string, md models.FileMetadata) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO decrypted_file_metadata (used_metadata, name, size, mime, key, last_modified)
		VALUES (?, ?, ?, ?, ?, ?)
	`, blob, md.Name, md.Size, md.Mime, md.Key, md.LastModified)
	if err != nil {
		return fmt.Errorf("failed to put file metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetFolder(ctx context.Context, blob string) (string, bool, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM decrypted_folder_metadata WHERE used_metadata = ?`, blob).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get folder metadata: %w", err)
	}
	return name, true, nil
}

func (r *SQLiteRepository) PutFolder(ctx context.Context, blob string, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO decrypted_folder_metadata (used_metadata, name) VALUES (?, ?)`, blob, name)
	if err != nil {
		return fmt.Errorf("failed to put folder metadata: %w", err)
	}
	return nil
}
