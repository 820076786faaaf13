package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/repository"
)

type activityStore struct {
	db *DB
	tx *state
}

func (a *activityStore) Append(ctx context.Context, entry model.ActivityLogEntry) error {
	return a.db.view(a.tx, func(s *state) error {
		s.lastSeq++
		s.activities[entry.ID] = entry
		s.activitySeq[entry.ID] = s.lastSeq
		return nil
	})
}

// Query expects from/to already validated as RFC 3339 or YYYY-MM-DD.
func (a *activityStore) Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityLogEntry, model.Meta, error) {
	query = repository.NormalizeActivityQuery(query)
	from, hasFrom := parseBound(query.From)
	to, hasTo := parseUpperBound(query.To)
	actor := strings.ToLower(strings.TrimSpace(query.Actor))
	message := strings.ToLower(strings.TrimSpace(query.Message))

	matched := make([]model.ActivityLogEntry, 0)
	seq := map[string]int64{}
	err := a.db.view(a.tx, func(s *state) error {
		for _, entry := range s.activities {
			if actor != "" &&
				!strings.Contains(strings.ToLower(entry.Actor.Username), actor) &&
				!strings.Contains(strings.ToLower(entry.Actor.UserID), actor) {
				continue
			}
			if message != "" && !strings.Contains(strings.ToLower(entry.Message), message) {
				continue
			}
			if hasFrom && entry.Timestamp.Before(from) {
				continue
			}
			if hasTo && !entry.Timestamp.Before(to) {
				continue
			}
			matched = append(matched, entry)
			seq[entry.ID] = s.activitySeq[entry.ID]
		}
		return nil
	})
	if err != nil {
		return nil, model.Meta{}, err
	}

	slices.SortFunc(matched, func(x, y model.ActivityLogEntry) int {
		var c int
		if query.Sort == "message" {
			c = strings.Compare(x.Message, y.Message)
		} else {
			c = x.Timestamp.Compare(y.Timestamp)
		}
		if c == 0 {
			c = cmp.Compare(seq[x.ID], seq[y.ID])
		}
		if query.Order == "desc" {
			c = -c
		}
		return c
	})

	meta := model.NewMeta(query.Page, query.Limit, len(matched))
	start := min((query.Page-1)*query.Limit, len(matched))
	end := min(start+query.Limit, len(matched))
	return matched[start:end], meta, nil
}

func (a *activityStore) Delete(ctx context.Context, id string) error {
	return a.db.view(a.tx, func(s *state) error {
		if _, ok := s.activities[id]; !ok {
			return model.ErrNotFound
		}
		delete(s.activities, id)
		delete(s.activitySeq, id)
		return nil
	})
}

// parseUpperBound returns an exclusive limit: a date-only value covers the whole day.
func parseUpperBound(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(model.DateLayout, value); err == nil {
		return t.AddDate(0, 0, 1), true
	}
	t, ok := parseBound(value)
	if !ok {
		return time.Time{}, false
	}
	return t.Add(time.Nanosecond), true
}

func parseBound(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(model.DateLayout, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
