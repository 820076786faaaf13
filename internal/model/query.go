package model

// Op is a filter condition operator.
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains"
	OpPrefix   Op = "prefix"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
)

// Condition constrains one field. Value is the raw string form of the operand.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// Filter matches records satisfying every All condition and, when Any is set, at least one Any condition.
type Filter struct {
	All []Condition
	Any []Condition
}

type Sort struct {
	Field string
	Desc  bool
}

type ListQuery struct {
	Filter Filter
	Sort   Sort
	Limit  int
}

type Reducer string

const (
	ReduceCount Reducer = "count"
	ReduceSum   Reducer = "sum"
)

type AggregateQuery struct {
	Filter  Filter
	GroupBy string
	Reducer Reducer
	Field   string
}
