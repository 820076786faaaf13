package model

import "github.com/shopspring/decimal"

// AggregateSummary is derived on every request and never stored.
type AggregateSummary struct {
	TotalStudents       int64           `json:"total_students"`
	TotalEmployees      int64           `json:"total_employees"`
	TotalExpenseRecords int64           `json:"total_expense_records"`
	TotalTransactions   int64           `json:"total_transactions"`
	IoTStudents         int64           `json:"iot_students"`
	SoDStudents         int64           `json:"sod_students"`
	ActiveStudents      int64           `json:"active_students"`
	Trainees            int64           `json:"trainees"`
	Internees           int64           `json:"internees"`
	TotalSalaries       decimal.Decimal `json:"total_salaries"`
	TransportExpenses   decimal.Decimal `json:"transport_expenses"`
	OtherExpenses       decimal.Decimal `json:"other_expenses"`
	TotalExpenses       decimal.Decimal `json:"total_expenses"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	NetProfit           decimal.Decimal `json:"net_profit"`
}

// StudentFilter narrows the dashboard student list.
type StudentFilter string

const (
	StudentFilterAll      StudentFilter = ""
	StudentFilterTrainee  StudentFilter = "trainee"
	StudentFilterInternee StudentFilter = "internee"
	StudentFilterIoT      StudentFilter = "iot"
	StudentFilterSoD      StudentFilter = "sod"
)

type DashboardOverview struct {
	Summary          AggregateSummary   `json:"summary"`
	Filter           StudentFilter      `json:"filter"`
	Students         []Student          `json:"students"`
	RecentActivities []ActivityLogEntry `json:"recent_activities"`
}

type SearchResults struct {
	Query     string     `json:"query"`
	Students  []Student  `json:"students"`
	Employees []Employee `json:"employees"`
	Expenses  []Expense  `json:"expenses"`
}

type TransactionQuery struct {
	Type   string
	Search string
	Sort   string
	Limit  int
}
