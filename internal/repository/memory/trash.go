package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"idatech-backoffice/internal/model"
)

type trashStore struct {
	db *DB
	tx *state
}

func (t *trashStore) Create(ctx context.Context, entry model.TrashBinEntry) error {
	entry.FieldSnapshot = maps.Clone(entry.FieldSnapshot)
	return t.db.view(t.tx, func(s *state) error {
		s.trash[entry.ID] = entry
		return nil
	})
}

func (t *trashStore) FindByID(ctx context.Context, id string) (model.TrashBinEntry, error) {
	var found model.TrashBinEntry
	err := t.db.view(t.tx, func(s *state) error {
		entry, ok := s.trash[id]
		if !ok {
			return model.ErrNotFound
		}
		found = entry
		return nil
	})
	found.FieldSnapshot = maps.Clone(found.FieldSnapshot)
	return found, err
}

func (t *trashStore) ListByOwner(ctx context.Context, ownerID string) ([]model.TrashBinEntry, error) {
	entries := make([]model.TrashBinEntry, 0)
	err := t.db.view(t.tx, func(s *state) error {
		for _, entry := range s.trash {
			if entry.OwnerID == ownerID {
				entry.FieldSnapshot = maps.Clone(entry.FieldSnapshot)
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b model.TrashBinEntry) int {
		if c := b.DeletedAt.Compare(a.DeletedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return entries, nil
}

func (t *trashStore) Delete(ctx context.Context, id string) error {
	return t.db.view(t.tx, func(s *state) error {
		if _, ok := s.trash[id]; !ok {
			return model.ErrNotFound
		}
		delete(s.trash, id)
		return nil
	})
}

func (t *trashStore) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	purged := 0
	err := t.db.view(t.tx, func(s *state) error {
		for id, entry := range s.trash {
			if entry.OwnerID == ownerID {
				delete(s.trash, id)
				purged++
			}
		}
		return nil
	})
	return purged, err
}
