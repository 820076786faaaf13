// Package memory is a mutex guarded storage backend used by tests and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"maps"
	"sync"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/repository"
)

type state struct {
	nextID     map[model.Variant]int64
	records    map[model.Variant]map[int64]model.Record
	trash      map[string]model.TrashBinEntry
	activities map[string]model.ActivityLogEntry
	users      map[string]model.User

	// activitySeq records append order; lastSeq is the most recent value handed out.
	activitySeq map[string]int64
	lastSeq     int64
}

func newState() *state {
	s := &state{
		nextID:     map[model.Variant]int64{},
		records:    map[model.Variant]map[int64]model.Record{},
		trash:      map[string]model.TrashBinEntry{},
		activities: map[string]model.ActivityLogEntry{},
		users:      map[string]model.User{},

		activitySeq: map[string]int64{},
	}
	for _, variant := range model.Variants() {
		s.records[variant] = map[int64]model.Record{}
	}
	return s
}

// clone copies every table. Records and entries are values, so a shallow copy per map is enough.
func (s *state) clone() *state {
	c := &state{
		nextID:     maps.Clone(s.nextID),
		records:    make(map[model.Variant]map[int64]model.Record, len(s.records)),
		trash:      maps.Clone(s.trash),
		activities: maps.Clone(s.activities),
		users:      maps.Clone(s.users),

		activitySeq: maps.Clone(s.activitySeq),
		lastSeq:     s.lastSeq,
	}
	for variant, table := range s.records {
		c.records[variant] = maps.Clone(table)
	}
	return c
}

// DB serialises every operation through one mutex.
type DB struct {
	mu sync.Mutex
	st *state
}

func New() *DB {
	return &DB{st: newState()}
}

func (db *DB) Stores() repository.Stores {
	return db.stores(nil)
}

// WithTx runs fn under the lock against a working copy and publishes the copy only on success.
func (db *DB) WithTx(ctx context.Context, fn func(tx repository.Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := db.st.clone()
	if err := fn(db.stores(working)); err != nil {
		return err
	}
	db.st = working
	return nil
}

// WithSnapshot runs fn under the lock against a throwaway copy.
func (db *DB) WithSnapshot(ctx context.Context, fn func(tx repository.Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(db.stores(db.st.clone()))
}

func (db *DB) stores(tx *state) repository.Stores {
	return repository.Stores{
		Records:    &recordStore{db: db, tx: tx},
		Trash:      &trashStore{db: db, tx: tx},
		Activities: &activityStore{db: db, tx: tx},
		Users:      &userStore{db: db, tx: tx},
	}
}

// view runs fn against the transaction state, or against the shared state under the lock.
func (db *DB) view(tx *state, fn func(s *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.st)
}
