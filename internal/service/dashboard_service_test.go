package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/repository"
	"idatech-backoffice/internal/repository/memory"
)

func TestDashboardService_Summarize(t *testing.T) {
	t.Run("empty store reports zeros", func(t *testing.T) {
		env := newTestEnv(t)

		summary, err := env.dashboard.Summarize(context.Background())
		require.NoError(t, err)

		assert.Zero(t, summary.TotalStudents)
		assert.Zero(t, summary.TotalEmployees)
		assert.Zero(t, summary.TotalExpenseRecords)
		assert.Zero(t, summary.TotalTransactions)
		assert.Zero(t, summary.IoTStudents)
		assert.Zero(t, summary.ActiveStudents)
		assert.Zero(t, summary.Internees)
		assert.True(t, summary.TotalSalaries.IsZero())
		assert.True(t, summary.TotalExpenses.IsZero())
		assert.True(t, summary.TotalRevenue.IsZero())
		assert.True(t, summary.NetProfit.IsZero())
	})

	t.Run("figures over a populated store", func(t *testing.T) {
		env := newTestEnv(t)

		env.add(t, model.VariantStudent, studentFields("Ada", model.StudentTypeTrainee, model.StudentProgramIoT))
		env.add(t, model.VariantStudent, studentFields("Grace", model.StudentTypeInterneeUniversity, model.StudentProgramSoD))
		linus := studentFields("Linus", model.StudentTypeInterneeHighschool, model.StudentProgramIoT)
		linus["current_status"] = "graduated"
		env.add(t, model.VariantStudent, linus)
		env.add(t, model.VariantEmployee, map[string]string{"name": "Musa", "position": "Mentor", "department": "IoT", "salary": "1000"})
		env.add(t, model.VariantExpense, expenseFields(model.ExpenseTypeTransport, "Bus fare", "19.99"))
		env.add(t, model.VariantExpense, expenseFields(model.ExpenseTypeOther, "Pencil", "0.01"))
		env.add(t, model.VariantTransaction, map[string]string{"type": model.ExpenseTypeOther, "description": "Fees", "amount": "2500"})

		summary, err := env.dashboard.Summarize(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(3), summary.TotalStudents)
		assert.Equal(t, int64(2), summary.ActiveStudents)
		assert.Equal(t, int64(2), summary.IoTStudents)
		assert.Equal(t, int64(1), summary.SoDStudents)
		assert.Equal(t, int64(1), summary.Trainees)
		assert.Equal(t, int64(2), summary.Internees)
		assert.Equal(t, int64(1), summary.TotalEmployees)
		assert.Equal(t, int64(2), summary.TotalExpenseRecords)
		assert.Equal(t, "19.99", summary.TransportExpenses.StringFixed(2))
		assert.Equal(t, "0.01", summary.OtherExpenses.StringFixed(2))
		assert.Equal(t, "20.00", summary.TotalExpenses.StringFixed(2))
		assert.Equal(t, "2500.00", summary.TotalRevenue.StringFixed(2))
		assert.Equal(t, "1480.00", summary.NetProfit.StringFixed(2))
	})

	t.Run("reads every figure from one snapshot", func(t *testing.T) {
		env := newTestEnv(t)
		env.add(t, model.VariantEmployee, map[string]string{"name": "Musa", "position": "Mentor", "department": "IoT", "salary": "1000"})

		backend := &snapshotCountingBackend{DB: env.db}
		summary, err := NewDashboardService(backend, env.activity).Summarize(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, backend.snapshots)
		assert.Equal(t, "-1000.00", summary.NetProfit.StringFixed(2))
	})
}

type snapshotCountingBackend struct {
	*memory.DB
	snapshots int
}

func (b *snapshotCountingBackend) Stores() repository.Stores {
	stores := b.DB.Stores()
	stores.Records = nil
	return stores
}

func (b *snapshotCountingBackend) WithSnapshot(ctx context.Context, fn func(tx repository.Stores) error) error {
	b.snapshots++
	return b.DB.WithSnapshot(ctx, fn)
}

func TestDashboardService_Overview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.add(t, model.VariantStudent, studentFields("Zara", model.StudentTypeTrainee, model.StudentProgramSoD))
	env.add(t, model.VariantStudent, studentFields("Ada", model.StudentTypeTrainee, model.StudentProgramIoT))
	env.add(t, model.VariantStudent, studentFields("Grace", model.StudentTypeInterneeUniversity, model.StudentProgramIoT))

	tests := []struct {
		filter model.StudentFilter
		names  []string
	}{
		{model.StudentFilterAll, []string{"Ada", "Grace", "Zara"}},
		{model.StudentFilterTrainee, []string{"Ada", "Zara"}},
		{model.StudentFilterInternee, []string{"Grace"}},
		{model.StudentFilterIoT, []string{"Ada", "Grace"}},
		{model.StudentFilterSoD, []string{"Zara"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			overview, err := env.dashboard.Overview(ctx, tt.filter)
			require.NoError(t, err)

			names := make([]string, 0, len(overview.Students))
			for _, s := range overview.Students {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.names, names)
			assert.Equal(t, int64(3), overview.Summary.TotalStudents)
			assert.Len(t, overview.RecentActivities, 3)
		})
	}

	_, err := env.dashboard.Overview(ctx, model.StudentFilter("alumni"))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDashboardService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.add(t, model.VariantStudent, studentFields("Ada Lovelace", model.StudentTypeTrainee, model.StudentProgramIoT))
	env.add(t, model.VariantEmployee, map[string]string{"name": "Musa", "position": "Mentor", "department": "Lovelace Lab", "salary": "10"})
	env.add(t, model.VariantExpense, expenseFields(model.ExpenseTypeOther, "Books for LOVELACE club", "10"))
	env.add(t, model.VariantExpense, expenseFields(model.ExpenseTypeOther, "Chalk", "1"))

	results, err := env.dashboard.Search(ctx, "lovelace")
	require.NoError(t, err)
	assert.Len(t, results.Students, 1)
	assert.Len(t, results.Employees, 1)
	require.Len(t, results.Expenses, 1)
	assert.Equal(t, "Books for LOVELACE club", results.Expenses[0].Description)

	empty, err := env.dashboard.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, empty.Students)
	assert.Empty(t, empty.Employees)
	assert.Empty(t, empty.Expenses)
}

func TestDashboardService_RecentTransactions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.add(t, model.VariantTransaction, map[string]string{"date": "2026-01-10", "type": "salary", "description": "January payroll", "amount": "900"})
	env.add(t, model.VariantTransaction, map[string]string{"date": "2026-02-10", "type": "transport", "description": "Bus hire", "amount": "150"})
	env.add(t, model.VariantTransaction, map[string]string{"date": "2026-03-10", "type": "other", "description": "Tuition fees", "amount": "2000"})

	descriptions := func(txs []model.Transaction) []string {
		out := make([]string, 0, len(txs))
		for _, tx := range txs {
			out = append(out, tx.Description)
		}
		return out
	}

	txs, err := env.dashboard.RecentTransactions(ctx, model.TransactionQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tuition fees", "Bus hire", "January payroll"}, descriptions(txs))

	txs, err = env.dashboard.RecentTransactions(ctx, model.TransactionQuery{Sort: "amount_asc", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bus hire", "January payroll"}, descriptions(txs))

	txs, err = env.dashboard.RecentTransactions(ctx, model.TransactionQuery{Type: "transport"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bus hire"}, descriptions(txs))

	txs, err = env.dashboard.RecentTransactions(ctx, model.TransactionQuery{Type: "all", Search: "PAY"})
	require.NoError(t, err)
	assert.Equal(t, []string{"January payroll"}, descriptions(txs))

	_, err = env.dashboard.RecentTransactions(ctx, model.TransactionQuery{Sort: "random"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}
