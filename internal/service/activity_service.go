package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/observability"
	"idatech-backoffice/internal/repository"
)

// ActivitySink records human readable actions attributed to an actor.
type ActivitySink interface {
	Record(ctx context.Context, actor model.Actor, message string, hint string) (model.ActivityLogEntry, error)
}

type ActivityService struct {
	stores repository.Stores
	bus    event.Bus
	now    func() time.Time
}

func NewActivityService(stores repository.Stores, bus event.Bus) *ActivityService {
	return &ActivityService{stores: stores, bus: bus, now: func() time.Time { return time.Now().UTC() }}
}

// Record appends an entry. The actor must be a known user.
func (s *ActivityService) Record(ctx context.Context, actor model.Actor, message string, hint string) (model.ActivityLogEntry, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return model.ActivityLogEntry{}, model.ErrUnknownActor
	}
	if _, err := s.stores.Users.FindByID(ctx, actor.UserID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ActivityLogEntry{}, model.ErrUnknownActor
		}
		return model.ActivityLogEntry{}, err
	}
	if hint == "" {
		hint = model.HintInfo
	}

	entry := model.ActivityLogEntry{
		ID:           uuid.NewString(),
		Actor:        actor,
		Message:      message,
		CategoryHint: hint,
		Timestamp:    s.now(),
	}
	if err := s.stores.Activities.Append(ctx, entry); err != nil {
		return model.ActivityLogEntry{}, err
	}

	publish(s.bus, event.New(event.TypeActivityLogged, actor.UserID, entry))
	return entry, nil
}

func (s *ActivityService) List(ctx context.Context, query model.ActivityQuery) ([]model.ActivityLogEntry, model.Meta, error) {
	if _, err := parseOptionalActivityTime(query.From); err != nil {
		return nil, model.Meta{}, model.FieldError("from", "invalid datetime format")
	}
	if _, err := parseOptionalActivityTime(query.To); err != nil {
		return nil, model.Meta{}, model.FieldError("to", "invalid datetime format")
	}
	if query.Sort != "" && query.Sort != "timestamp" && query.Sort != "message" {
		return nil, model.Meta{}, model.FieldError("sort", "must be timestamp or message")
	}
	if query.Order != "" && query.Order != "asc" && query.Order != "desc" {
		return nil, model.Meta{}, model.FieldError("order", "must be asc or desc")
	}

	return s.stores.Activities.Query(ctx, query)
}

// Recent returns the newest n entries.
func (s *ActivityService) Recent(ctx context.Context, n int) ([]model.ActivityLogEntry, error) {
	entries, _, err := s.stores.Activities.Query(ctx, model.ActivityQuery{Limit: n})
	return entries, err
}

// Delete removes one entry. Deletions are not themselves logged.
func (s *ActivityService) Delete(ctx context.Context, id string, actor model.Actor) error {
	if err := s.stores.Activities.Delete(ctx, id); err != nil {
		return err
	}
	publish(s.bus, event.New(event.TypeActivityRemoved, actor.UserID, map[string]string{"id": id}))
	return nil
}

func parseOptionalActivityTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	if value, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return value.UTC(), nil
	}
	value, err := time.Parse(model.DateLayout, trimmed)
	if err != nil {
		return time.Time{}, err
	}
	return value.UTC(), nil
}

// logActivity writes a feed entry without failing the caller.
func logActivity(ctx context.Context, sink ActivitySink, actor model.Actor, message string, hint string) {
	if sink == nil {
		return
	}
	if _, err := sink.Record(ctx, actor, message, hint); err != nil {
		observability.RecordActivityAppendFailed()
		slog.Warn("failed to record activity", "error", err, "actor", actor.UserID, "message", message)
	}
}

func publish(bus event.Bus, e event.Event) {
	if bus != nil {
		bus.Publish(e)
	}
}
