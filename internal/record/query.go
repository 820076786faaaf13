package record

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
)

var validOps = map[model.Op]bool{
	model.OpEq:       true,
	model.OpContains: true,
	model.OpPrefix:   true,
	model.OpGte:      true,
	model.OpLte:      true,
}

// CheckFilter rejects conditions naming unknown fields or operators, or carrying operands of the wrong type.
func CheckFilter(schema Schema, filter model.Filter) error {
	fields := map[string]string{}
	for _, group := range [][]model.Condition{filter.All, filter.Any} {
		for _, cond := range group {
			spec, ok := schema.Field(cond.Field)
			if !ok {
				fields[cond.Field] = "unknown field"
				continue
			}
			if !validOps[cond.Op] {
				fields[cond.Field] = "unsupported operator " + string(cond.Op)
				continue
			}
			if cond.Op == model.OpContains || cond.Op == model.OpPrefix {
				continue
			}
			if reason := checkOperand(spec, cond.Value); reason != "" {
				fields[cond.Field] = reason
			}
		}
	}
	if len(fields) > 0 {
		return model.NewValidationError(fields)
	}
	return nil
}

func checkOperand(spec FieldSpec, value string) string {
	switch spec.Kind {
	case KindDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return "filter value must be a decimal number"
		}
	case KindInteger:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return "filter value must be a whole number"
		}
	case KindDate:
		if _, err := time.Parse(model.DateLayout, value); err != nil {
			return "filter value must be a date in YYYY-MM-DD format"
		}
	}
	return ""
}

// CheckListQuery validates the filter and sort field of a list query.
func CheckListQuery(variant model.Variant, q model.ListQuery) (Schema, error) {
	schema, err := For(variant)
	if err != nil {
		return Schema{}, err
	}
	if err := CheckFilter(schema, q.Filter); err != nil {
		return Schema{}, err
	}
	if q.Sort.Field != "" {
		if _, ok := schema.Field(q.Sort.Field); !ok {
			return Schema{}, model.FieldError(q.Sort.Field, "unknown sort field")
		}
	}
	if q.Limit < 0 {
		return Schema{}, model.FieldError("limit", "must be zero or greater")
	}
	return schema, nil
}

// CheckAggregateQuery validates the filter, grouping field and reducer of an aggregate query.
func CheckAggregateQuery(variant model.Variant, q model.AggregateQuery) (Schema, error) {
	schema, err := For(variant)
	if err != nil {
		return Schema{}, err
	}
	if err := CheckFilter(schema, q.Filter); err != nil {
		return Schema{}, err
	}
	if q.GroupBy != "" {
		if _, ok := schema.Field(q.GroupBy); !ok {
			return Schema{}, model.FieldError(q.GroupBy, "unknown group field")
		}
	}
	switch q.Reducer {
	case model.ReduceCount:
	case model.ReduceSum:
		spec, ok := schema.Field(q.Field)
		if !ok {
			return Schema{}, model.FieldError(q.Field, "unknown sum field")
		}
		if spec.Kind != KindDecimal && spec.Kind != KindInteger {
			return Schema{}, model.FieldError(q.Field, "sum field must be numeric")
		}
	default:
		return Schema{}, model.FieldError("reducer", "must be count or sum")
	}
	return schema, nil
}

// Value returns the string form of a field, including "id".
func Value(rec model.Record, field string) string {
	if field == "id" {
		return strconv.FormatInt(rec.RecordID(), 10)
	}
	s, _ := Stringify(rec.Fields()[field])
	return s
}

// Match reports whether rec satisfies the filter. The filter must have passed CheckFilter.
func Match(schema Schema, rec model.Record, filter model.Filter) bool {
	for _, cond := range filter.All {
		if !matchCondition(schema, rec, cond) {
			return false
		}
	}
	if len(filter.Any) == 0 {
		return true
	}
	for _, cond := range filter.Any {
		if matchCondition(schema, rec, cond) {
			return true
		}
	}
	return false
}

func matchCondition(schema Schema, rec model.Record, cond model.Condition) bool {
	spec, _ := schema.Field(cond.Field)
	actual := Value(rec, cond.Field)

	switch cond.Op {
	case model.OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(cond.Value))
	case model.OpPrefix:
		return strings.HasPrefix(strings.ToLower(actual), strings.ToLower(cond.Value))
	case model.OpEq:
		return compareValues(spec.Kind, actual, cond.Value) == 0
	case model.OpGte:
		return compareValues(spec.Kind, actual, cond.Value) >= 0
	case model.OpLte:
		return compareValues(spec.Kind, actual, cond.Value) <= 0
	}
	return false
}

// Compare orders two records by the sort field. Ties fall back to ascending identifier
// whatever the direction; sorting by id (or nothing) honours the direction instead.
func Compare(schema Schema, a model.Record, b model.Record, sort model.Sort) int {
	byID := cmp.Compare(a.RecordID(), b.RecordID())
	if sort.Field == "" || sort.Field == "id" {
		if sort.Desc {
			return -byID
		}
		return byID
	}

	spec, _ := schema.Field(sort.Field)
	c := compareValues(spec.Kind, Value(a, sort.Field), Value(b, sort.Field))
	if sort.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return byID
}

func compareValues(kind Kind, a string, b string) int {
	switch kind {
	case KindDecimal:
		da, _ := decimal.NewFromString(a)
		db, _ := decimal.NewFromString(b)
		return da.Cmp(db)
	case KindInteger:
		ia, _ := strconv.ParseInt(a, 10, 64)
		ib, _ := strconv.ParseInt(b, 10, 64)
		return cmp.Compare(ia, ib)
	default:
		return strings.Compare(a, b)
	}
}
