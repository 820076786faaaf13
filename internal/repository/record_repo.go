package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/record"
)

type RecordRepository struct {
	db querier
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: pool}
}

func (r *RecordRepository) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	schema, err := record.For(rec.Variant())
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(schema.Fields))
	placeholders := make([]string, 0, len(schema.Fields))
	args := make([]any, 0, len(schema.Fields))
	fields := rec.Fields()
	for i, field := range schema.Fields {
		value, _ := record.Stringify(fields[field.Name])
		columns = append(columns, quote(field.Name))
		placeholders = append(placeholders, placeholder(field.Kind, i+1))
		args = append(args, value)
	}

	var id int64
	err = r.db.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
			quote(schema.Table), strings.Join(columns, ", "), strings.Join(placeholders, ", ")),
		args...).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", strings.ToLower(string(rec.Variant())), err)
	}
	return rec.WithID(id), nil
}

func (r *RecordRepository) Get(ctx context.Context, variant model.Variant, id int64) (model.Record, error) {
	schema, err := record.For(variant)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectList(schema), quote(schema.Table)), id)
	rec, err := scanRecord(schema, row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", strings.ToLower(string(variant)), err)
	}
	return rec, nil
}

func (r *RecordRepository) Update(ctx context.Context, rec model.Record) error {
	schema, err := record.For(rec.Variant())
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(schema.Fields))
	args := make([]any, 0, len(schema.Fields)+1)
	fields := rec.Fields()
	for i, field := range schema.Fields {
		value, _ := record.Stringify(fields[field.Name])
		sets = append(sets, quote(field.Name)+" = "+placeholder(field.Kind, i+1))
		args = append(args, value)
	}
	args = append(args, rec.RecordID())

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, quote(schema.Table), strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", strings.ToLower(string(rec.Variant())), err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes the row and returns it. Concurrent deletes of one id serialise on the row lock.
func (r *RecordRepository) Delete(ctx context.Context, variant model.Variant, id int64) (model.Record, error) {
	schema, err := record.For(variant)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, quote(schema.Table), selectList(schema)), id)
	rec, err := scanRecord(schema, row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", strings.ToLower(string(variant)), err)
	}
	return rec, nil
}

func (r *RecordRepository) List(ctx context.Context, variant model.Variant, query model.ListQuery) iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		schema, err := record.CheckListQuery(variant, query)
		if err != nil {
			yield(nil, err)
			return
		}

		where, args := buildFilter(schema, query.Filter, 1)
		sql := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s`,
			selectList(schema), quote(schema.Table), where, orderBy(query.Sort))
		if query.Limit > 0 {
			args = append(args, query.Limit)
			sql += fmt.Sprintf(" LIMIT $%d", len(args))
		}

		rows, err := r.db.Query(ctx, sql, args...)
		if err != nil {
			yield(nil, fmt.Errorf("list %s: %w", schema.Table, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(schema, rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan %s: %w", schema.Table, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("list %s: %w", schema.Table, err))
		}
	}
}

func (r *RecordRepository) Aggregate(ctx context.Context, variant model.Variant, query model.AggregateQuery) (map[string]decimal.Decimal, error) {
	schema, err := record.CheckAggregateQuery(variant, query)
	if err != nil {
		return nil, err
	}

	reducer := "COUNT(*)::text"
	if query.Reducer == model.ReduceSum {
		reducer = fmt.Sprintf("COALESCE(SUM(%s), 0)::text", quote(query.Field))
	}

	group := "''"
	groupBy := ""
	if query.GroupBy != "" {
		spec, _ := schema.Field(query.GroupBy)
		group = textExpr(spec)
		groupBy = " GROUP BY 1"
	}

	where, args := buildFilter(schema, query.Filter, 1)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s, %s FROM %s %s%s`, group, reducer, quote(schema.Table), where, groupBy),
		args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", schema.Table, err)
	}
	defer rows.Close()

	result := map[string]decimal.Decimal{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("parse aggregate value %q: %w", value, err)
		}
		result[key] = d
	}
	return result, rows.Err()
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func placeholder(kind record.Kind, n int) string {
	switch kind {
	case record.KindDecimal:
		return fmt.Sprintf("$%d::numeric", n)
	case record.KindInteger:
		return fmt.Sprintf("$%d::bigint", n)
	case record.KindDate:
		return fmt.Sprintf("$%d::date", n)
	default:
		return fmt.Sprintf("$%d", n)
	}
}

// textExpr renders a column as the same string form record.Stringify produces.
func textExpr(spec record.FieldSpec) string {
	if spec.Kind == record.KindDate {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", quote(spec.Name))
	}
	return quote(spec.Name) + "::text"
}

func selectList(schema record.Schema) string {
	parts := make([]string, 0, len(schema.Fields)+1)
	parts = append(parts, "id")
	for _, field := range schema.Fields {
		parts = append(parts, textExpr(field))
	}
	return strings.Join(parts, ", ")
}

func orderBy(sort model.Sort) string {
	if sort.Field == "" || sort.Field == "id" {
		if sort.Desc {
			return "id DESC"
		}
		return "id"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id", quote(sort.Field), direction)
}

func buildFilter(schema record.Schema, filter model.Filter, argIdx int) (string, []any) {
	where := make([]string, 0)
	args := make([]any, 0)

	for _, cond := range filter.All {
		where = append(where, conditionSQL(schema, cond, argIdx))
		args = append(args, operand(cond))
		argIdx++
	}

	if len(filter.Any) > 0 {
		anyOf := make([]string, 0, len(filter.Any))
		for _, cond := range filter.Any {
			anyOf = append(anyOf, conditionSQL(schema, cond, argIdx))
			args = append(args, operand(cond))
			argIdx++
		}
		where = append(where, "("+strings.Join(anyOf, " OR ")+")")
	}

	if len(where) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

func conditionSQL(schema record.Schema, cond model.Condition, argIdx int) string {
	spec, _ := schema.Field(cond.Field)
	column := quote(cond.Field)

	switch cond.Op {
	case model.OpContains, model.OpPrefix:
		return fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, textExpr(spec), argIdx)
	case model.OpGte:
		return fmt.Sprintf("%s >= %s", column, placeholder(spec.Kind, argIdx))
	case model.OpLte:
		return fmt.Sprintf("%s <= %s", column, placeholder(spec.Kind, argIdx))
	default:
		return fmt.Sprintf("%s = %s", column, placeholder(spec.Kind, argIdx))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func operand(cond model.Condition) any {
	switch cond.Op {
	case model.OpContains:
		return "%" + likeEscaper.Replace(cond.Value) + "%"
	case model.OpPrefix:
		return likeEscaper.Replace(cond.Value) + "%"
	default:
		return cond.Value
	}
}

func scanRecord(schema record.Schema, row pgx.Row) (model.Record, error) {
	var id int64
	values := make([]string, len(schema.Fields))
	dest := make([]any, 0, len(values)+1)
	dest = append(dest, &id)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	raw := make(map[string]string, len(values))
	for i, name := range schema.Columns() {
		raw[name] = values[i]
	}
	return record.Hydrate(schema.Variant, id, raw)
}
