package items

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/drivesync/internal/client/client"
	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/dmitrijs2005/drivesync/internal/common"
	"github.com/dmitrijs2005/drivesync/internal/dbx"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func file(id, parent, name string) models.Item {
	return models.Item{
		ID: id, ParentID: parent, Name: name, Kind: models.KindFile,
		Mime: "text/plain", Size: 10, CreatedAt: 1_700_000_000, ModifiedAt: 1_700_000_001,
		Key: "k", ChunkCount: 1, Region: "de-1", Bucket: "b1", Version: 2,
	}
}

func folder(id, parent, name string) models.Item {
	return models.Item{ID: id, ParentID: parent, Name: name, Kind: models.KindFolder, CreatedAt: 1_700_000_000}
}

func TestUpsert_InsertAndReplace(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	orig := file("f1", "p", "a.txt")
	require.NoError(t, r.Upsert(ctx, orig))

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("item mismatch (-want +got):\n%s", diff)
	}

	updated := orig
	updated.Name = "b.txt"
	updated.Size = 99
	require.NoError(t, r.Upsert(ctx, updated))

	got, err = r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", got.Name)
	assert.Equal(t, int64(99), got.Size)
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListByParent_SkipsUndecryptedAndOrders(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, file("f1", "p", "zeta.txt")))
	require.NoError(t, r.Upsert(ctx, file("f2", "p", "Alpha.txt")))
	require.NoError(t, r.Upsert(ctx, file("f3", "p", "")))
	require.NoError(t, r.Upsert(ctx, folder("d1", "p", "docs")))
	require.NoError(t, r.Upsert(ctx, file("x1", "other", "x.txt")))

	got, err := r.ListByParent(ctx, "p")
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, i := range got {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"docs", "Alpha.txt", "zeta.txt"}, names)

	empty, err := r.ListByParent(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListByParent_SkipsSelfParentedRoot(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, folder(models.RootContainerID, models.RootContainerID, models.RootDisplayName)))
	require.NoError(t, r.Upsert(ctx, folder("d1", models.RootContainerID, "docs")))

	got, err := r.ListByParent(ctx, models.RootContainerID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
}

func TestSetColor(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, folder("d1", "p", "docs")))
	require.NoError(t, r.SetColor(ctx, "d1", "blue"))

	got, err := r.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "blue", got.Color)

	require.ErrorIs(t, r.SetColor(ctx, "missing", "red"), common.ErrNotFound)
}

func TestDeleteByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, file("f1", "p", "a.txt")))
	require.NoError(t, r.DeleteByID(ctx, "f1"))
	require.NoError(t, r.DeleteByID(ctx, "f1"))

	_, err := r.GetByID(ctx, "f1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsert_WithinTx(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Upsert(ctx, folder("real-root", "real-root", models.RootDisplayName)); err != nil {
			return err
		}
		return repo.Upsert(ctx, folder(models.RootContainerID, models.RootContainerID, models.RootDisplayName))
	})
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	for _, id := range []string{"real-root", models.RootContainerID} {
		got, err := r.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.RootDisplayName, got.Name)
	}
}
