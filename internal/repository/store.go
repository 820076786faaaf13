package repository

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
)

// RecordStore owns every live record. Records passed to Create and Update are already validated.
type RecordStore interface {
	// Create assigns a fresh id and returns the stored record.
	Create(ctx context.Context, rec model.Record) (model.Record, error)
	Get(ctx context.Context, variant model.Variant, id int64) (model.Record, error)
	Update(ctx context.Context, rec model.Record) error
	// Delete removes the record and returns it as it was stored.
	Delete(ctx context.Context, variant model.Variant, id int64) (model.Record, error)
	// List yields matching records. The sequence can be ranged over more than once.
	List(ctx context.Context, variant model.Variant, query model.ListQuery) iter.Seq2[model.Record, error]
	// Aggregate reduces matching records per group. Without grouping the single key is "".
	Aggregate(ctx context.Context, variant model.Variant, query model.AggregateQuery) (map[string]decimal.Decimal, error)
}

type TrashStore interface {
	Create(ctx context.Context, entry model.TrashBinEntry) error
	FindByID(ctx context.Context, id string) (model.TrashBinEntry, error)
	// ListByOwner returns the owner's entries, newest deletion first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.TrashBinEntry, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int, error)
}

type ActivityStore interface {
	Append(ctx context.Context, entry model.ActivityLogEntry) error
	Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityLogEntry, model.Meta, error)
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, user model.User) error
	Count(ctx context.Context) (int, error)
}

// Stores groups the repositories bound to one connection or transaction.
type Stores struct {
	Records    RecordStore
	Trash      TrashStore
	Activities ActivityStore
	Users      UserStore
}

// TxManager runs fn with stores bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithTx(ctx context.Context, fn func(tx Stores) error) error
	// WithSnapshot runs fn against one consistent read-only view. Writes made by fn are
	// rejected or discarded.
	WithSnapshot(ctx context.Context, fn func(tx Stores) error) error
}

// Backend is a complete storage implementation.
type Backend interface {
	TxManager
	Stores() Stores
}

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

// NormalizeActivityQuery applies paging defaults and bounds.
func NormalizeActivityQuery(query model.ActivityQuery) model.ActivityQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = DefaultActivityLimit
	}
	if query.Limit > MaxActivityLimit {
		query.Limit = MaxActivityLimit
	}
	if query.Sort != "message" {
		query.Sort = "timestamp"
	}
	if query.Order != "asc" {
		query.Order = "desc"
	}
	return query
}
