package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"idatech-backoffice/internal/model"
)

type ActivityRepository struct {
	db querier
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: pool}
}

func (r *ActivityRepository) Append(ctx context.Context, entry model.ActivityLogEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO activity_entries
		 (id, actor_user_id, actor_username, actor_role, actor_ip, message, category_hint, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Actor.UserID, entry.Actor.Username, entry.Actor.Role, entry.Actor.IP,
		entry.Message, entry.CategoryHint, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

// Query expects from/to already validated as RFC 3339 or YYYY-MM-DD.
func (r *ActivityRepository) Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityLogEntry, model.Meta, error) {
	query = NormalizeActivityQuery(query)

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if actor := strings.TrimSpace(query.Actor); actor != "" {
		where = append(where, fmt.Sprintf("(actor_username ILIKE $%d OR actor_user_id ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+likeEscaper.Replace(actor)+"%")
		argIdx++
	}
	if message := strings.TrimSpace(query.Message); message != "" {
		where = append(where, fmt.Sprintf("message ILIKE $%d", argIdx))
		args = append(args, "%"+likeEscaper.Replace(message)+"%")
		argIdx++
	}
	if from := strings.TrimSpace(query.From); from != "" {
		where = append(where, fmt.Sprintf("occurred_at >= $%d::timestamptz", argIdx))
		args = append(args, from)
		argIdx++
	}
	if to := strings.TrimSpace(query.To); to != "" {
		if isDateOnly(to) {
			where = append(where, fmt.Sprintf("occurred_at < ($%d::date + 1)", argIdx))
		} else {
			where = append(where, fmt.Sprintf("occurred_at <= $%d::timestamptz", argIdx))
		}
		args = append(args, to)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM activity_entries %s", whereClause), args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count activity entries: %w", err)
	}
	meta := model.NewMeta(query.Page, query.Limit, total)

	order := "occurred_at"
	if query.Sort == "message" {
		order = "message"
	}
	direction := "DESC"
	if query.Order == "asc" {
		direction = "ASC"
	}

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT id::text, actor_user_id, actor_username, actor_role, actor_ip,
		        message, category_hint, occurred_at
		 FROM activity_entries %s
		 ORDER BY %s %s, seq %s
		 LIMIT $%d OFFSET $%d`, whereClause, order, direction, direction, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.db.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query activity entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityLogEntry, 0)
	for rows.Next() {
		var e model.ActivityLogEntry
		var occurredAt time.Time

		if err := rows.Scan(
			&e.ID, &e.Actor.UserID, &e.Actor.Username, &e.Actor.Role, &e.Actor.IP,
			&e.Message, &e.CategoryHint, &occurredAt,
		); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan activity entry: %w", err)
		}
		e.Timestamp = occurredAt.UTC()

		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM activity_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// isDateOnly reports whether a bound is a calendar day rather than an instant.
func isDateOnly(value string) bool {
	_, err := time.Parse(model.DateLayout, value)
	return err == nil
}
