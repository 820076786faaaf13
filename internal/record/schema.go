package record

import (
	"fmt"

	"idatech-backoffice/internal/model"
)

// Kind is the storage type of a schema field.
type Kind int

const (
	KindText Kind = iota
	KindChoice
	KindDecimal
	KindInteger
	KindDate
)

type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
	Choices  []string
	Default  string
}

// Schema describes the fixed field set of one variant.
type Schema struct {
	Variant model.Variant
	Table   string
	Fields  []FieldSpec
}

var expenseTypes = []string{model.ExpenseTypeSalary, model.ExpenseTypeTransport, model.ExpenseTypeOther}

var schemas = map[model.Variant]Schema{
	model.VariantStudent: {
		Variant: model.VariantStudent,
		Table:   "students",
		Fields: []FieldSpec{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "type", Kind: KindChoice, Required: true, Choices: []string{
				model.StudentTypeTrainee, model.StudentTypeInterneeUniversity, model.StudentTypeInterneeHighschool,
			}},
			{Name: "category", Kind: KindText},
			{Name: "program", Kind: KindChoice, Required: true, Choices: []string{model.StudentProgramIoT, model.StudentProgramSoD}},
			{Name: "level", Kind: KindText, Required: true},
			{Name: "email", Kind: KindText},
			{Name: "phone", Kind: KindText},
			{Name: "current_status", Kind: KindChoice, Required: true, Default: model.StudentStatusActive, Choices: []string{
				model.StudentStatusActive, "inactive", "graduated", "suspended",
			}},
			{Name: "enrollment_date", Kind: KindDate},
			{Name: "attended_sessions", Kind: KindInteger},
			{Name: "total_sessions", Kind: KindInteger},
		},
	},
	model.VariantEmployee: {
		Variant: model.VariantEmployee,
		Table:   "employees",
		Fields: []FieldSpec{
			{Name: "name", Kind: KindText, Required: true},
			{Name: "position", Kind: KindText, Required: true},
			{Name: "department", Kind: KindText, Required: true},
			{Name: "salary", Kind: KindDecimal, Required: true},
		},
	},
	model.VariantExpense: {
		Variant: model.VariantExpense,
		Table:   "expenses",
		Fields: []FieldSpec{
			{Name: "type", Kind: KindChoice, Required: true, Choices: expenseTypes},
			{Name: "description", Kind: KindText, Required: true},
			{Name: "amount", Kind: KindDecimal, Required: true},
			{Name: "date", Kind: KindDate},
		},
	},
	model.VariantTransaction: {
		Variant: model.VariantTransaction,
		Table:   "transactions",
		Fields: []FieldSpec{
			{Name: "date", Kind: KindDate},
			{Name: "type", Kind: KindChoice, Required: true, Choices: expenseTypes},
			{Name: "description", Kind: KindText, Required: true},
			{Name: "amount", Kind: KindDecimal, Required: true},
		},
	},
}

// For returns the schema of a variant.
func For(variant model.Variant) (Schema, error) {
	schema, ok := schemas[variant]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", model.ErrUnknownVariant, variant)
	}
	return schema, nil
}

// Field looks up a field by name. The identifier is addressable as "id".
func (s Schema) Field(name string) (FieldSpec, bool) {
	if name == "id" {
		return FieldSpec{Name: "id", Kind: KindInteger}, true
	}
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Columns lists the stored field names in schema order, without the identifier.
func (s Schema) Columns() []string {
	columns := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		columns = append(columns, field.Name)
	}
	return columns
}

func (s Schema) mustField(name string) FieldSpec {
	field, ok := s.Field(name)
	if !ok {
		panic(fmt.Sprintf("record: %s has no field %q", s.Variant, name))
	}
	return field
}
