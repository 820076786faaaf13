package memory

import (
	"context"
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/record"
)

type recordStore struct {
	db *DB
	tx *state
}

func (r *recordStore) table(s *state, variant model.Variant) (map[int64]model.Record, error) {
	table, ok := s.records[variant]
	if !ok {
		return nil, model.ErrUnknownVariant
	}
	return table, nil
}

func (r *recordStore) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	var created model.Record
	err := r.db.view(r.tx, func(s *state) error {
		table, err := r.table(s, rec.Variant())
		if err != nil {
			return err
		}
		s.nextID[rec.Variant()]++
		created = rec.WithID(s.nextID[rec.Variant()])
		table[created.RecordID()] = created
		return nil
	})
	return created, err
}

func (r *recordStore) Get(ctx context.Context, variant model.Variant, id int64) (model.Record, error) {
	var found model.Record
	err := r.db.view(r.tx, func(s *state) error {
		table, err := r.table(s, variant)
		if err != nil {
			return err
		}
		rec, ok := table[id]
		if !ok {
			return model.ErrNotFound
		}
		found = rec
		return nil
	})
	return found, err
}

func (r *recordStore) Update(ctx context.Context, rec model.Record) error {
	return r.db.view(r.tx, func(s *state) error {
		table, err := r.table(s, rec.Variant())
		if err != nil {
			return err
		}
		if _, ok := table[rec.RecordID()]; !ok {
			return model.ErrNotFound
		}
		table[rec.RecordID()] = rec
		return nil
	})
}

func (r *recordStore) Delete(ctx context.Context, variant model.Variant, id int64) (model.Record, error) {
	var removed model.Record
	err := r.db.view(r.tx, func(s *state) error {
		table, err := r.table(s, variant)
		if err != nil {
			return err
		}
		rec, ok := table[id]
		if !ok {
			return model.ErrNotFound
		}
		delete(table, id)
		removed = rec
		return nil
	})
	return removed, err
}

// List snapshots the matching records on each iteration, so ranging again sees current state.
func (r *recordStore) List(ctx context.Context, variant model.Variant, query model.ListQuery) iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		matched, err := r.collect(variant, query)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, rec := range matched {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (r *recordStore) collect(variant model.Variant, query model.ListQuery) ([]model.Record, error) {
	schema, err := record.CheckListQuery(variant, query)
	if err != nil {
		return nil, err
	}

	var matched []model.Record
	err = r.db.view(r.tx, func(s *state) error {
		table, err := r.table(s, variant)
		if err != nil {
			return err
		}
		for _, rec := range table {
			if record.Match(schema, rec, query.Filter) {
				matched = append(matched, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matched, func(a, b model.Record) int {
		return record.Compare(schema, a, b, query.Sort)
	})
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (r *recordStore) Aggregate(ctx context.Context, variant model.Variant, query model.AggregateQuery) (map[string]decimal.Decimal, error) {
	if _, err := record.CheckAggregateQuery(variant, query); err != nil {
		return nil, err
	}

	matched, err := r.collect(variant, model.ListQuery{Filter: query.Filter})
	if err != nil {
		return nil, err
	}

	result := map[string]decimal.Decimal{}
	if query.GroupBy == "" {
		result[""] = decimal.Zero
	}
	for _, rec := range matched {
		key := ""
		if query.GroupBy != "" {
			key = record.Value(rec, query.GroupBy)
		}

		step := decimal.NewFromInt(1)
		if query.Reducer == model.ReduceSum {
			step, err = decimal.NewFromString(record.Value(rec, query.Field))
			if err != nil {
				step = decimal.Zero
			}
		}
		result[key] = result[key].Add(step)
	}
	return result, nil
}
