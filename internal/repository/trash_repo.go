package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"idatech-backoffice/internal/model"
)

type TrashRepository struct {
	db querier
}

func NewTrashRepository(pool *pgxpool.Pool) *TrashRepository {
	return &TrashRepository{db: pool}
}

func (r *TrashRepository) Create(ctx context.Context, entry model.TrashBinEntry) error {
	snapshot := entry.FieldSnapshot
	if snapshot == nil {
		snapshot = map[string]any{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO trash_entries
		 (id, owner_id, item_type, original_item_id, field_snapshot, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.OwnerID, entry.ItemType, entry.OriginalItemID, snapshot, entry.DeletedAt)
	if err != nil {
		return fmt.Errorf("create trash entry: %w", err)
	}
	return nil
}

func (r *TrashRepository) FindByID(ctx context.Context, id string) (model.TrashBinEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.TrashBinEntry{}, model.ErrNotFound
	}

	entry, err := scanTrashEntry(r.db.QueryRow(ctx,
		`SELECT id::text, owner_id, item_type, original_item_id, field_snapshot, deleted_at
		 FROM trash_entries
		 WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrashBinEntry{}, model.ErrNotFound
	}
	if err != nil {
		return model.TrashBinEntry{}, fmt.Errorf("find trash entry by id: %w", err)
	}
	return entry, nil
}

func (r *TrashRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.TrashBinEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, owner_id, item_type, original_item_id, field_snapshot, deleted_at
		 FROM trash_entries
		 WHERE owner_id = $1
		 ORDER BY deleted_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	defer rows.Close()

	entries := make([]model.TrashBinEntry, 0)
	for rows.Next() {
		entry, err := scanTrashEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trash entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *TrashRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM trash_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trash entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *TrashRepository) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM trash_entries WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("empty trash: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanTrashEntry(row pgx.Row) (model.TrashBinEntry, error) {
	var entry model.TrashBinEntry
	if err := row.Scan(&entry.ID, &entry.OwnerID, &entry.ItemType, &entry.OriginalItemID,
		&entry.FieldSnapshot, &entry.DeletedAt); err != nil {
		return model.TrashBinEntry{}, err
	}
	entry.DeletedAt = entry.DeletedAt.UTC()
	return entry, nil
}
