package service

import (
	"context"
	"iter"
	"strings"

	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/repository"
)

const (
	recentActivityCount     = 10
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// DashboardService only reads. Every figure is recomputed on each call.
type DashboardService struct {
	backend  repository.Backend
	records  repository.RecordStore
	activity *ActivityService
}

func NewDashboardService(backend repository.Backend, activity *ActivityService) *DashboardService {
	return &DashboardService{backend: backend, records: backend.Stores().Records, activity: activity}
}

// Summarize computes every figure from one snapshot, so the totals and net profit agree.
func (s *DashboardService) Summarize(ctx context.Context) (model.AggregateSummary, error) {
	var summary model.AggregateSummary
	err := s.backend.WithSnapshot(ctx, func(tx repository.Stores) error {
		var err error
		summary, err = summarize(ctx, tx.Records)
		return err
	})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	return summary, nil
}

func summarize(ctx context.Context, records repository.RecordStore) (model.AggregateSummary, error) {
	var summary model.AggregateSummary

	counts := map[model.Variant]*int64{
		model.VariantStudent:     &summary.TotalStudents,
		model.VariantEmployee:    &summary.TotalEmployees,
		model.VariantExpense:     &summary.TotalExpenseRecords,
		model.VariantTransaction: &summary.TotalTransactions,
	}
	for variant, target := range counts {
		result, err := records.Aggregate(ctx, variant, model.AggregateQuery{Reducer: model.ReduceCount})
		if err != nil {
			return model.AggregateSummary{}, err
		}
		*target = result[""].IntPart()
	}

	byProgram, err := records.Aggregate(ctx, model.VariantStudent, model.AggregateQuery{GroupBy: "program", Reducer: model.ReduceCount})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	summary.IoTStudents = byProgram[model.StudentProgramIoT].IntPart()
	summary.SoDStudents = byProgram[model.StudentProgramSoD].IntPart()

	byStatus, err := records.Aggregate(ctx, model.VariantStudent, model.AggregateQuery{GroupBy: "current_status", Reducer: model.ReduceCount})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	summary.ActiveStudents = byStatus[model.StudentStatusActive].IntPart()

	byType, err := records.Aggregate(ctx, model.VariantStudent, model.AggregateQuery{GroupBy: "type", Reducer: model.ReduceCount})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	for studentType, count := range byType {
		switch {
		case studentType == model.StudentTypeTrainee:
			summary.Trainees += count.IntPart()
		case model.IsInternee(studentType):
			summary.Internees += count.IntPart()
		}
	}

	salaries, err := records.Aggregate(ctx, model.VariantEmployee, model.AggregateQuery{Reducer: model.ReduceSum, Field: "salary"})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	summary.TotalSalaries = salaries[""]

	expenses, err := records.Aggregate(ctx, model.VariantExpense, model.AggregateQuery{GroupBy: "type", Reducer: model.ReduceSum, Field: "amount"})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	summary.TransportExpenses = decimal.Zero
	summary.OtherExpenses = decimal.Zero
	for expenseType, sum := range expenses {
		if expenseType == model.ExpenseTypeTransport {
			summary.TransportExpenses = summary.TransportExpenses.Add(sum)
			continue
		}
		summary.OtherExpenses = summary.OtherExpenses.Add(sum)
	}
	summary.TotalExpenses = summary.TransportExpenses.Add(summary.OtherExpenses)

	revenue, err := records.Aggregate(ctx, model.VariantTransaction, model.AggregateQuery{Reducer: model.ReduceSum, Field: "amount"})
	if err != nil {
		return model.AggregateSummary{}, err
	}
	summary.TotalRevenue = revenue[""]

	summary.NetProfit = summary.TotalRevenue.Sub(summary.TotalExpenses).Sub(summary.TotalSalaries)
	return summary, nil
}

var studentFilters = map[model.StudentFilter]model.Condition{
	model.StudentFilterTrainee:  {Field: "type", Op: model.OpEq, Value: model.StudentTypeTrainee},
	model.StudentFilterInternee: {Field: "type", Op: model.OpPrefix, Value: "internee"},
	model.StudentFilterIoT:      {Field: "program", Op: model.OpEq, Value: model.StudentProgramIoT},
	model.StudentFilterSoD:      {Field: "program", Op: model.OpEq, Value: model.StudentProgramSoD},
}

// Overview combines the summary, the filtered student list and the latest activity.
func (s *DashboardService) Overview(ctx context.Context, filter model.StudentFilter) (model.DashboardOverview, error) {
	query := model.ListQuery{Sort: model.Sort{Field: "name"}}
	if filter != model.StudentFilterAll {
		cond, ok := studentFilters[filter]
		if !ok {
			return model.DashboardOverview{}, model.FieldError("filter", "must be one of trainee, internee, iot, sod")
		}
		query.Filter.All = []model.Condition{cond}
	}

	summary, err := s.Summarize(ctx)
	if err != nil {
		return model.DashboardOverview{}, err
	}

	students, err := collect[model.Student](s.records.List(ctx, model.VariantStudent, query))
	if err != nil {
		return model.DashboardOverview{}, err
	}

	overview := model.DashboardOverview{Summary: summary, Filter: filter, Students: students, RecentActivities: []model.ActivityLogEntry{}}
	if s.activity != nil {
		recent, err := s.activity.Recent(ctx, recentActivityCount)
		if err != nil {
			return model.DashboardOverview{}, err
		}
		overview.RecentActivities = recent
	}
	return overview, nil
}

var searchFields = map[model.Variant][]string{
	model.VariantStudent:  {"name", "type", "category", "program", "level", "email"},
	model.VariantEmployee: {"name", "position", "department"},
	model.VariantExpense:  {"type", "description"},
}

func anyContains(fields []string, q string) model.Filter {
	conditions := make([]model.Condition, 0, len(fields))
	for _, field := range fields {
		conditions = append(conditions, model.Condition{Field: field, Op: model.OpContains, Value: q})
	}
	return model.Filter{Any: conditions}
}

// Search matches q as a case-insensitive substring of any text field of students, employees and expenses.
func (s *DashboardService) Search(ctx context.Context, q string) (model.SearchResults, error) {
	q = strings.TrimSpace(q)
	results := model.SearchResults{Query: q, Students: []model.Student{}, Employees: []model.Employee{}, Expenses: []model.Expense{}}
	if q == "" {
		return results, nil
	}

	var err error
	if results.Students, err = collect[model.Student](s.records.List(ctx, model.VariantStudent,
		model.ListQuery{Filter: anyContains(searchFields[model.VariantStudent], q), Sort: model.Sort{Field: "name"}})); err != nil {
		return model.SearchResults{}, err
	}
	if results.Employees, err = collect[model.Employee](s.records.List(ctx, model.VariantEmployee,
		model.ListQuery{Filter: anyContains(searchFields[model.VariantEmployee], q), Sort: model.Sort{Field: "name"}})); err != nil {
		return model.SearchResults{}, err
	}
	if results.Expenses, err = collect[model.Expense](s.records.List(ctx, model.VariantExpense,
		model.ListQuery{Filter: anyContains(searchFields[model.VariantExpense], q), Sort: model.Sort{Field: "date", Desc: true}})); err != nil {
		return model.SearchResults{}, err
	}
	return results, nil
}

var transactionSorts = map[string]model.Sort{
	"":            {Field: "date", Desc: true},
	"date_desc":   {Field: "date", Desc: true},
	"date_asc":    {Field: "date"},
	"amount_desc": {Field: "amount", Desc: true},
	"amount_asc":  {Field: "amount"},
}

// RecentTransactions lists transactions by type and search text, newest first unless sorted otherwise.
func (s *DashboardService) RecentTransactions(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error) {
	sort, ok := transactionSorts[query.Sort]
	if !ok {
		return nil, model.FieldError("sort", "must be one of date_asc, date_desc, amount_asc, amount_desc")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	listQuery := model.ListQuery{Sort: sort, Limit: limit}
	if kind := strings.TrimSpace(query.Type); kind != "" && kind != "all" {
		listQuery.Filter.All = append(listQuery.Filter.All, model.Condition{Field: "type", Op: model.OpEq, Value: strings.ToLower(kind)})
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		listQuery.Filter.Any = anyContains([]string{"description", "type"}, search).Any
	}

	return collect[model.Transaction](s.records.List(ctx, model.VariantTransaction, listQuery))
}

func collect[T model.Record](seq iter.Seq2[model.Record, error]) ([]T, error) {
	out := make([]T, 0)
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		if typed, ok := rec.(T); ok {
			out = append(out, typed)
		}
	}
	return out, nil
}
