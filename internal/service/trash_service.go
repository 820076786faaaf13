package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/observability"
	"idatech-backoffice/internal/record"
	"idatech-backoffice/internal/repository"
)

// TrashService moves records into owner scoped snapshots and back.
type TrashService struct {
	backend  repository.Backend
	rules    record.Rules
	activity ActivitySink
	bus      event.Bus
	now      func() time.Time
}

func NewTrashService(backend repository.Backend, rules record.Rules, activity ActivitySink, bus event.Bus) *TrashService {
	return &TrashService{
		backend:  backend,
		rules:    rules,
		activity: activity,
		bus:      bus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SnapshotAndRemove deletes the record and stores its snapshot in one transaction.
// The record is removed first, so a losing concurrent delete sees ErrNotFound and writes nothing.
func (s *TrashService) SnapshotAndRemove(ctx context.Context, variant model.Variant, id int64, actor model.Actor) (model.TrashBinEntry, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return model.TrashBinEntry{}, model.ErrUnknownActor
	}

	var entry model.TrashBinEntry
	var removed model.Record
	err := s.backend.WithTx(ctx, func(tx repository.Stores) error {
		rec, err := tx.Records.Delete(ctx, variant, id)
		if err != nil {
			return err
		}
		removed = rec

		entry = model.TrashBinEntry{
			ID:             uuid.NewString(),
			OwnerID:        actor.UserID,
			ItemType:       string(rec.Variant()),
			OriginalItemID: rec.RecordID(),
			FieldSnapshot:  rec.Fields(),
			DeletedAt:      s.now(),
		}
		return tx.Trash.Create(ctx, entry)
	})
	observability.TrashOperation(string(variant), "snapshot", err)
	if err != nil {
		return model.TrashBinEntry{}, err
	}

	logActivity(ctx, s.activity, actor, activityMessage("delete", removed), model.HintDelete)
	publish(s.bus, event.New(event.TypeRecordDeleted, actor.UserID, entry))
	return entry, nil
}

// Restore rebuilds a new record from the actor's entry and removes the entry.
// The entry is left untouched when no rule exists for its item type.
func (s *TrashService) Restore(ctx context.Context, entryID string, actor model.Actor) (model.Record, error) {
	var restored model.Record
	var itemType string
	err := s.backend.WithTx(ctx, func(tx repository.Stores) error {
		entry, err := tx.Trash.FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		itemType = entry.ItemType
		if entry.OwnerID != actor.UserID {
			return model.ErrForbidden
		}

		rec, err := s.rules.Reconstruct(entry.ItemType, entry.FieldSnapshot, s.now())
		if err != nil {
			return err
		}

		restored, err = tx.Records.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("recreate %s: %w", entry.ItemType, err)
		}
		return tx.Trash.Delete(ctx, entry.ID)
	})
	observability.TrashOperation(itemType, "restore", err)
	if err != nil {
		return nil, err
	}

	logActivity(ctx, s.activity, actor, activityMessage("restore", restored), model.HintRestore)
	publish(s.bus, event.New(event.TypeRecordRestored, actor.UserID, model.Export(restored)))
	return restored, nil
}

// List returns only the actor's own entries, newest deletion first.
func (s *TrashService) List(ctx context.Context, actor model.Actor) ([]model.TrashBinEntry, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, model.ErrUnknownActor
	}
	return s.backend.Stores().Trash.ListByOwner(ctx, actor.UserID)
}

// Purge permanently deletes one of the actor's entries.
func (s *TrashService) Purge(ctx context.Context, entryID string, actor model.Actor) error {
	var purged model.TrashBinEntry
	err := s.backend.WithTx(ctx, func(tx repository.Stores) error {
		entry, err := tx.Trash.FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.OwnerID != actor.UserID {
			return model.ErrForbidden
		}
		purged = entry
		return tx.Trash.Delete(ctx, entry.ID)
	})
	observability.TrashOperation(purged.ItemType, "purge", err)
	if err != nil {
		return err
	}

	logActivity(ctx, s.activity, actor,
		fmt.Sprintf("Permanently deleted %s #%d from trash", strings.ToLower(purged.ItemType), purged.OriginalItemID),
		model.HintDelete)
	publish(s.bus, event.New(event.TypeTrashPurged, actor.UserID, map[string]any{"ids": []string{purged.ID}}))
	return nil
}

// Empty purges every entry the actor owns and returns how many were removed.
func (s *TrashService) Empty(ctx context.Context, actor model.Actor) (int, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return 0, model.ErrUnknownActor
	}

	count, err := s.backend.Stores().Trash.DeleteByOwner(ctx, actor.UserID)
	observability.TrashOperation("", "empty", err)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logActivity(ctx, s.activity, actor, fmt.Sprintf("Emptied trash (%d items)", count), model.HintDelete)
		publish(s.bus, event.New(event.TypeTrashPurged, actor.UserID, map[string]any{"count": count}))
	}
	return count, nil
}
