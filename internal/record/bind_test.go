package record

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/model"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("student with required fields", func(t *testing.T) {
		rec, err := Build(model.VariantStudent, map[string]string{
			"name":    "Ada",
			"type":    "trainee",
			"program": "IoT",
			"level":   "Beginner",
		}, fixedNow)
		require.NoError(t, err)

		student, ok := rec.(model.Student)
		require.True(t, ok)
		require.Equal(t, "Ada", student.Name)
		require.Equal(t, "iot", student.Program)
		require.Equal(t, model.StudentStatusActive, student.CurrentStatus)
		require.Equal(t, "2026-03-14", student.EnrollmentDate.Format(model.DateLayout))
		require.Zero(t, student.ID)
	})

	t.Run("missing required fields are all reported", func(t *testing.T) {
		_, err := Build(model.VariantStudent, map[string]string{"name": "Ada"}, fixedNow)
		require.ErrorIs(t, err, model.ErrValidation)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "type")
		require.Contains(t, verr.Fields, "program")
		require.Contains(t, verr.Fields, "level")
		require.NotContains(t, verr.Fields, "name")
	})

	t.Run("invalid choice is rejected", func(t *testing.T) {
		_, err := Build(model.VariantStudent, map[string]string{
			"name": "Ada", "type": "apprentice", "program": "iot", "level": "Beginner",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields["type"], "must be one of")
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		_, err := Build(model.VariantStudent, map[string]string{
			"name": "Ada", "type": "trainee", "program": "iot", "level": "Beginner", "email": "not-an-email",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "email")
	})

	t.Run("expense amount must parse as decimal", func(t *testing.T) {
		_, err := Build(model.VariantExpense, map[string]string{
			"type": "transport", "description": "Bus fare", "amount": "twelve",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "must be a decimal number", verr.Fields["amount"])
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		_, err := Build(model.VariantExpense, map[string]string{
			"type": "transport", "description": "Bus fare", "amount": "-1.50",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "must be a non-negative decimal", verr.Fields["amount"])
	})

	t.Run("more than two decimal places is rejected", func(t *testing.T) {
		_, err := Build(model.VariantEmployee, map[string]string{
			"name": "Ada", "position": "Engineer", "department": "Finance", "salary": "10.005",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "salary")
	})

	t.Run("missing salary is required", func(t *testing.T) {
		_, err := Build(model.VariantEmployee, map[string]string{
			"name": "Ada", "position": "Engineer", "department": "Finance",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "salary")
	})

	t.Run("transaction date defaults to today", func(t *testing.T) {
		rec, err := Build(model.VariantTransaction, map[string]string{
			"type": "other", "description": "Tuition", "amount": "250.00",
		}, fixedNow)
		require.NoError(t, err)

		tx := rec.(model.Transaction)
		require.Equal(t, "2026-03-14", tx.Date.Format(model.DateLayout))
		require.True(t, decimal.RequireFromString("250").Equal(tx.Amount))
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		_, err := Build(model.VariantTransaction, map[string]string{
			"type": "other", "description": "Tuition", "amount": "250", "date": "14/03/2026",
		}, fixedNow)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "date")
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := Build(model.Variant("Course"), map[string]string{}, fixedNow)
		require.ErrorIs(t, err, model.ErrUnknownVariant)
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	current := model.Employee{
		ID:         7,
		Name:       "Ada",
		Position:   "Engineer",
		Department: "Finance",
		Salary:     decimal.RequireFromString("1200.50"),
	}

	t.Run("overlays fields and keeps the id", func(t *testing.T) {
		rec, err := Merge(current, map[string]string{"department": "Operations"}, fixedNow)
		require.NoError(t, err)

		employee := rec.(model.Employee)
		require.Equal(t, int64(7), employee.ID)
		require.Equal(t, "Operations", employee.Department)
		require.Equal(t, "Ada", employee.Name)
		require.True(t, current.Salary.Equal(employee.Salary))
	})

	t.Run("revalidates the merged record", func(t *testing.T) {
		_, err := Merge(current, map[string]string{"name": "  "}, fixedNow)
		require.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestHydrateFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	rec, err := Hydrate(model.VariantExpense, 3, map[string]string{
		"type":        "transport",
		"description": "Fuel",
		"amount":      "oops",
		"date":        "2025-12-01",
	})
	require.NoError(t, err)

	expense := rec.(model.Expense)
	require.Equal(t, int64(3), expense.ID)
	require.True(t, expense.Amount.IsZero())
	require.Equal(t, "2025-12-01", expense.Date.Format(model.DateLayout))
}

func TestStringify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{"Ada", "Ada"},
		{int64(42), "42"},
		{float64(3), "3"},
		{float64(19.99), "19.99"},
		{true, "true"},
		{decimal.RequireFromString("0.01"), "0.01"},
	}
	for _, tc := range cases {
		got, ok := Stringify(tc.in)
		require.True(t, ok)
		require.Equal(t, tc.want, got)
	}

	_, ok := Stringify(map[string]any{"nested": 1})
	require.False(t, ok)
}
