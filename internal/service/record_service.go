package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/observability"
	"idatech-backoffice/internal/record"
	"idatech-backoffice/internal/repository"
)

type RecordService struct {
	stores   repository.Stores
	trash    *TrashService
	activity ActivitySink
	bus      event.Bus
	now      func() time.Time
}

func NewRecordService(stores repository.Stores, trash *TrashService, activity ActivitySink, bus event.Bus) *RecordService {
	return &RecordService{
		stores:   stores,
		trash:    trash,
		activity: activity,
		bus:      bus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add validates raw field strings and stores a new record.
func (s *RecordService) Add(ctx context.Context, variant model.Variant, raw map[string]string, actor model.Actor) (model.Record, error) {
	rec, err := record.Build(variant, raw, s.now())
	if err != nil {
		observability.RecordOperation(string(variant), "create", err)
		return nil, err
	}

	created, err := s.stores.Records.Create(ctx, rec)
	observability.RecordOperation(string(variant), "create", err)
	if err != nil {
		return nil, err
	}

	logActivity(ctx, s.activity, actor, activityMessage("create", created), model.HintCreate)
	publish(s.bus, event.New(event.TypeRecordCreated, actor.UserID, model.Export(created)))
	return created, nil
}

// Update merges raw over the stored fields and revalidates the whole record.
func (s *RecordService) Update(ctx context.Context, variant model.Variant, id int64, raw map[string]string, actor model.Actor) (model.Record, error) {
	current, err := s.stores.Records.Get(ctx, variant, id)
	if err != nil {
		return nil, err
	}

	updated, err := record.Merge(current, raw, s.now())
	if err != nil {
		observability.RecordOperation(string(variant), "update", err)
		return nil, err
	}

	err = s.stores.Records.Update(ctx, updated)
	observability.RecordOperation(string(variant), "update", err)
	if err != nil {
		return nil, err
	}

	logActivity(ctx, s.activity, actor, activityMessage("update", updated), model.HintUpdate)
	publish(s.bus, event.New(event.TypeRecordUpdated, actor.UserID, model.Export(updated)))
	return updated, nil
}

func (s *RecordService) Get(ctx context.Context, variant model.Variant, id int64) (model.Record, error) {
	return s.stores.Records.Get(ctx, variant, id)
}

// Export returns the full flat field set of one record for report and email collaborators.
func (s *RecordService) Export(ctx context.Context, variant model.Variant, id int64) (map[string]any, error) {
	rec, err := s.stores.Records.Get(ctx, variant, id)
	if err != nil {
		return nil, err
	}
	return model.Export(rec), nil
}

func (s *RecordService) List(ctx context.Context, variant model.Variant, query model.ListQuery) iter.Seq2[model.Record, error] {
	return s.stores.Records.List(ctx, variant, query)
}

// Delete moves the record to the actor's trash.
func (s *RecordService) Delete(ctx context.Context, variant model.Variant, id int64, actor model.Actor) (model.TrashBinEntry, error) {
	return s.trash.SnapshotAndRemove(ctx, variant, id, actor)
}

// BulkDelete trashes each id independently. A failing id is reported and never aborts the batch.
func (s *RecordService) BulkDelete(ctx context.Context, variant model.Variant, ids []int64, actor model.Actor) model.BulkDeleteResponse {
	result := model.BulkDeleteResponse{Deleted: []int64{}, Failed: []model.BulkDeleteFailure{}}

	for _, id := range ids {
		if _, err := s.trash.SnapshotAndRemove(ctx, variant, id, actor); err != nil {
			result.Failed = append(result.Failed, model.BulkDeleteFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	result.DeletedCount = len(result.Deleted)

	if result.DeletedCount > 0 {
		logActivity(ctx, s.activity, actor,
			fmt.Sprintf("Bulk deleted %d %s", result.DeletedCount, plural(variant)), model.HintDelete)
	}
	return result
}
