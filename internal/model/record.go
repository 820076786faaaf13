package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Variant names a record kind. It doubles as the trash item type discriminator.
type Variant string

const (
	VariantStudent     Variant = "Student"
	VariantEmployee    Variant = "Employee"
	VariantExpense     Variant = "Expense"
	VariantTransaction Variant = "Transaction"
)

const DateLayout = "2006-01-02"

// Variants returns every record kind the store knows about.
func Variants() []Variant {
	return []Variant{VariantStudent, VariantEmployee, VariantExpense, VariantTransaction}
}

var variantPaths = map[string]Variant{
	"students":     VariantStudent,
	"employees":    VariantEmployee,
	"expenses":     VariantExpense,
	"transactions": VariantTransaction,
}

// ParseVariantPath maps a URL collection segment such as "students" to its variant.
func ParseVariantPath(segment string) (Variant, error) {
	variant, ok := variantPaths[segment]
	if !ok {
		return "", ErrUnknownVariant
	}
	return variant, nil
}

// Record is one persisted entity instance.
type Record interface {
	Variant() Variant
	RecordID() int64
	// WithID returns a copy of the record carrying id.
	WithID(id int64) Record
	// Fields returns every stored field except the identifier as a flat mapping.
	Fields() map[string]any
	// Label is the short human name used in activity messages.
	Label() string
}

const (
	StudentTypeTrainee            = "trainee"
	StudentTypeInterneeUniversity = "internee-university"
	StudentTypeInterneeHighschool = "internee-highschool"
	StudentProgramIoT             = "iot"
	StudentProgramSoD             = "sod"
	StudentStatusActive           = "active"
	ExpenseTypeSalary             = "salary"
	ExpenseTypeTransport          = "transport"
	ExpenseTypeOther              = "other"
)

// IsInternee reports whether a student type belongs to the internee group.
func IsInternee(studentType string) bool {
	return strings.HasPrefix(studentType, "internee")
}

type Student struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name" validate:"required,max=100"`
	Type             string    `json:"type" validate:"required"`
	Category         string    `json:"category" validate:"max=100"`
	Program          string    `json:"program" validate:"required"`
	Level            string    `json:"level" validate:"required,max=50"`
	Email            string    `json:"email" validate:"omitempty,email,max=254"`
	Phone            string    `json:"phone" validate:"max=30"`
	CurrentStatus    string    `json:"current_status" validate:"required"`
	EnrollmentDate   time.Time `json:"enrollment_date"`
	AttendedSessions int64     `json:"attended_sessions" validate:"gte=0"`
	TotalSessions    int64     `json:"total_sessions" validate:"gte=0"`
}

func (s Student) Variant() Variant { return VariantStudent }
func (s Student) RecordID() int64 { return s.ID }
func (s Student) Label() string { return s.Name }
func (s Student) WithID(id int64) Record {
	s.ID = id
	return s
}

func (s Student) Fields() map[string]any {
	return map[string]any{
		"name":              s.Name,
		"type":              s.Type,
		"category":          s.Category,
		"program":           s.Program,
		"level":             s.Level,
		"email":             s.Email,
		"phone":             s.Phone,
		"current_status":    s.CurrentStatus,
		"enrollment_date":   s.EnrollmentDate.Format(DateLayout),
		"attended_sessions": s.AttendedSessions,
		"total_sessions":    s.TotalSessions,
	}
}

// AttendanceRate is the attended share of sessions as a percentage, zero without sessions.
func (s Student) AttendanceRate() decimal.Decimal {
	if s.TotalSessions <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.AttendedSessions).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(s.TotalSessions)).
		Round(1)
}

type Employee struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name" validate:"required,max=100"`
	Position   string          `json:"position" validate:"required,max=100"`
	Department string          `json:"department" validate:"required,max=100"`
	Salary     decimal.Decimal `json:"salary" validate:"decimal_gte0"`
}

func (e Employee) Variant() Variant { return VariantEmployee }
func (e Employee) RecordID() int64 { return e.ID }
func (e Employee) Label() string { return e.Name }
func (e Employee) WithID(id int64) Record {
	e.ID = id
	return e
}

func (e Employee) Fields() map[string]any {
	return map[string]any{
		"name":       e.Name,
		"position":   e.Position,
		"department": e.Department,
		"salary":     e.Salary.StringFixed(2),
	}
}

type Expense struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gte0"`
	Date        time.Time       `json:"date"`
}

func (e Expense) Variant() Variant { return VariantExpense }
func (e Expense) RecordID() int64 { return e.ID }
func (e Expense) Label() string { return e.Description }
func (e Expense) WithID(id int64) Record {
	e.ID = id
	return e
}

func (e Expense) Fields() map[string]any {
	return map[string]any{
		"type":        e.Type,
		"description": e.Description,
		"amount":      e.Amount.StringFixed(2),
		"date":        e.Date.Format(DateLayout),
	}
}

type Transaction struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gte0"`
}

func (t Transaction) Variant() Variant { return VariantTransaction }
func (t Transaction) RecordID() int64 { return t.ID }
func (t Transaction) Label() string { return t.Description }
func (t Transaction) WithID(id int64) Record {
	t.ID = id
	return t
}

func (t Transaction) Fields() map[string]any {
	return map[string]any{
		"date":        t.Date.Format(DateLayout),
		"type":        t.Type,
		"description": t.Description,
		"amount":      t.Amount.StringFixed(2),
	}
}

// Export is the flat mapping handed to report and email collaborators: every field plus the id.
func Export(rec Record) map[string]any {
	out := rec.Fields()
	out["id"] = rec.RecordID()
	out["item_type"] = string(rec.Variant())
	if s, ok := rec.(Student); ok {
		out["attendance_rate"] = s.AttendanceRate().StringFixed(1)
	}
	return out
}
