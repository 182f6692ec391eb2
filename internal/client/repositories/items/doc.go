// Package items is the sync cache: the local table of decrypted remote
// entries keyed by uuid.
//
// Writes replace the whole row (latest wins). Listings skip rows whose name
// is still empty, i.e. entries whose metadata could not be decrypted.
//
//	repo := items.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, item)
//	children, _ := repo.ListByParent(ctx, parentID)
package items
