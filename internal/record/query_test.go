package record

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/model"
)

func expense(id int64, kind string, description string, amount string, date string) model.Expense {
	d, _ := time.Parse(model.DateLayout, date)
	return model.Expense{
		ID:          id,
		Type:        kind,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Date:        d,
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	schema, err := For(model.VariantExpense)
	require.NoError(t, err)

	fuel := expense(1, "transport", "Fuel for the van", "45.10", "2026-01-05")

	cases := []struct {
		name   string
		filter model.Filter
		want   bool
	}{
		{"empty filter matches", model.Filter{}, true},
		{"equality", model.Filter{All: []model.Condition{{Field: "type", Op: model.OpEq, Value: "transport"}}}, true},
		{"equality mismatch", model.Filter{All: []model.Condition{{Field: "type", Op: model.OpEq, Value: "other"}}}, false},
		{"contains is case insensitive", model.Filter{All: []model.Condition{{Field: "description", Op: model.OpContains, Value: "VAN"}}}, true},
		{"prefix", model.Filter{All: []model.Condition{{Field: "description", Op: model.OpPrefix, Value: "fuel"}}}, true},
		{"numeric gte", model.Filter{All: []model.Condition{{Field: "amount", Op: model.OpGte, Value: "9.99"}}}, true},
		{"numeric lte", model.Filter{All: []model.Condition{{Field: "amount", Op: model.OpLte, Value: "45.09"}}}, false},
		{"date range", model.Filter{All: []model.Condition{
			{Field: "date", Op: model.OpGte, Value: "2026-01-01"},
			{Field: "date", Op: model.OpLte, Value: "2026-01-31"},
		}}, true},
		{"any needs one match", model.Filter{Any: []model.Condition{
			{Field: "type", Op: model.OpEq, Value: "salary"},
			{Field: "description", Op: model.OpContains, Value: "fuel"},
		}}, true},
		{"any with no match", model.Filter{Any: []model.Condition{
			{Field: "type", Op: model.OpEq, Value: "salary"},
		}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, CheckFilter(schema, tc.filter))
			require.Equal(t, tc.want, Match(schema, fuel, tc.filter))
		})
	}
}

func TestCheckListQuery(t *testing.T) {
	t.Parallel()

	t.Run("unknown filter field", func(t *testing.T) {
		_, err := CheckListQuery(model.VariantExpense, model.ListQuery{
			Filter: model.Filter{All: []model.Condition{{Field: "salary", Op: model.OpEq, Value: "1"}}},
		})
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "unknown field", verr.Fields["salary"])
	})

	t.Run("unknown sort field", func(t *testing.T) {
		_, err := CheckListQuery(model.VariantExpense, model.ListQuery{Sort: model.Sort{Field: "nope"}})
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("malformed range operand", func(t *testing.T) {
		_, err := CheckListQuery(model.VariantExpense, model.ListQuery{
			Filter: model.Filter{All: []model.Condition{{Field: "amount", Op: model.OpGte, Value: "lots"}}},
		})
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("sorting by id is allowed", func(t *testing.T) {
		_, err := CheckListQuery(model.VariantExpense, model.ListQuery{Sort: model.Sort{Field: "id", Desc: true}})
		require.NoError(t, err)
	})
}

func TestCheckAggregateQuery(t *testing.T) {
	t.Parallel()

	_, err := CheckAggregateQuery(model.VariantExpense, model.AggregateQuery{Reducer: model.ReduceSum, Field: "amount", GroupBy: "type"})
	require.NoError(t, err)

	_, err = CheckAggregateQuery(model.VariantExpense, model.AggregateQuery{Reducer: model.ReduceSum, Field: "description"})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = CheckAggregateQuery(model.VariantExpense, model.AggregateQuery{Reducer: "avg"})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestCompareOrdersNumerically(t *testing.T) {
	t.Parallel()

	schema, err := For(model.VariantExpense)
	require.NoError(t, err)

	small := expense(1, "other", "a", "9.50", "2026-01-01")
	large := expense(2, "other", "b", "10.00", "2026-01-01")

	require.Negative(t, Compare(schema, small, large, model.Sort{Field: "amount"}))
	require.Positive(t, Compare(schema, large, small, model.Sort{Field: "amount"}))
	require.Negative(t, Compare(schema, small, large, model.Sort{Field: "date"}))
}

func TestCompareBreaksTiesByAscendingID(t *testing.T) {
	t.Parallel()

	schema, err := For(model.VariantExpense)
	require.NoError(t, err)

	first := expense(1, "other", "a", "5.00", "2026-01-01")
	second := expense(2, "other", "b", "5.00", "2026-01-01")

	require.Negative(t, Compare(schema, first, second, model.Sort{Field: "amount", Desc: true}))
	require.Negative(t, Compare(schema, first, second, model.Sort{Field: "amount"}))
	require.Positive(t, Compare(schema, first, second, model.Sort{Desc: true}))
}
