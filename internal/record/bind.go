package record

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
)

// maxMoney bounds NUMERIC(12,2) columns.
var maxMoney = decimal.New(1, 10)

type mode int

const (
	// strict reports every malformed field.
	strict mode = iota
	// lenient replaces malformed or missing fields with the schema default.
	lenient
)

type reader struct {
	schema Schema
	raw    map[string]string
	mode   mode
	today  time.Time
	errs   map[string]string
}

func newReader(schema Schema, raw map[string]string, m mode, now time.Time) *reader {
	y, mo, d := now.UTC().Date()
	return &reader{
		schema: schema,
		raw:    raw,
		mode:   m,
		today:  time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		errs:   map[string]string{},
	}
}

func (r *reader) value(name string) (string, bool) {
	v := cleanText(r.raw[name])
	return v, v != ""
}

func (r *reader) fail(name string, reason string) {
	if r.mode == strict {
		r.errs[name] = reason
	}
}

func (r *reader) text(name string) string {
	v, _ := r.value(name)
	return v
}

func (r *reader) choice(name string) string {
	spec := r.schema.mustField(name)
	v, ok := r.value(name)
	if !ok {
		return spec.Default
	}
	lowered := strings.ToLower(v)
	if slices.Contains(spec.Choices, lowered) {
		return lowered
	}
	r.fail(name, "must be one of: "+strings.Join(spec.Choices, ", "))
	return spec.Default
}

func (r *reader) decimal(name string) decimal.Decimal {
	spec := r.schema.mustField(name)
	v, ok := r.value(name)
	if !ok {
		if spec.Required {
			r.fail(name, name+" is a required field")
		}
		return decimal.Zero
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		r.fail(name, "must be a decimal number")
		return decimal.Zero
	}
	if d.IsNegative() && r.mode == lenient {
		return decimal.Zero
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		r.fail(name, "must have at most 2 decimal places")
		d = d.Round(2)
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		r.fail(name, "must be less than "+maxMoney.String())
		return decimal.Zero
	}
	return d
}

func (r *reader) integer(name string) int64 {
	v, ok := r.value(name)
	if !ok {
		return 0
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int64(f)) {
			r.fail(name, "must be a whole number")
			return 0
		}
		n = int64(f)
	}
	if n < 0 && r.mode == lenient {
		return 0
	}
	return n
}

func (r *reader) date(name string) time.Time {
	v, ok := r.value(name)
	if !ok {
		return r.today
	}

	if t, err := time.Parse(model.DateLayout, v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	r.fail(name, "must be a date in YYYY-MM-DD format")
	return r.today
}

var binders = map[model.Variant]func(r *reader) model.Record{
	model.VariantStudent: func(r *reader) model.Record {
		return model.Student{
			Name:             r.text("name"),
			Type:             r.choice("type"),
			Category:         r.text("category"),
			Program:          r.choice("program"),
			Level:            r.text("level"),
			Email:            r.text("email"),
			Phone:            r.text("phone"),
			CurrentStatus:    r.choice("current_status"),
			EnrollmentDate:   r.date("enrollment_date"),
			AttendedSessions: r.integer("attended_sessions"),
			TotalSessions:    r.integer("total_sessions"),
		}
	},
	model.VariantEmployee: func(r *reader) model.Record {
		return model.Employee{
			Name:       r.text("name"),
			Position:   r.text("position"),
			Department: r.text("department"),
			Salary:     r.decimal("salary"),
		}
	},
	model.VariantExpense: func(r *reader) model.Record {
		return model.Expense{
			Type:        r.choice("type"),
			Description: r.text("description"),
			Amount:      r.decimal("amount"),
			Date:        r.date("date"),
		}
	},
	model.VariantTransaction: func(r *reader) model.Record {
		return model.Transaction{
			Date:        r.date("date"),
			Type:        r.choice("type"),
			Description: r.text("description"),
			Amount:      r.decimal("amount"),
		}
	},
}

func bind(variant model.Variant, raw map[string]string, m mode, now time.Time) (model.Record, *reader, error) {
	schema, err := For(variant)
	if err != nil {
		return nil, nil, err
	}
	binder, ok := binders[variant]
	if !ok {
		return nil, nil, model.ErrUnknownVariant
	}

	r := newReader(schema, raw, m, now)
	return binder(r), r, nil
}

// Build validates and coerces raw field strings into a new record without an id.
func Build(variant model.Variant, raw map[string]string, now time.Time) (model.Record, error) {
	rec, r, err := bind(variant, raw, strict, now)
	if err != nil {
		return nil, err
	}
	if err := check(rec, r.errs); err != nil {
		return nil, err
	}
	return rec, nil
}

// Merge overlays raw on the current field values and revalidates the result.
func Merge(current model.Record, raw map[string]string, now time.Time) (model.Record, error) {
	merged := StringFields(current.Fields())
	for name, value := range raw {
		merged[name] = value
	}

	rec, err := Build(current.Variant(), merged, now)
	if err != nil {
		return nil, err
	}
	return rec.WithID(current.RecordID()), nil
}

// Hydrate rebuilds a stored record from its string columns, falling back to defaults.
func Hydrate(variant model.Variant, id int64, raw map[string]string) (model.Record, error) {
	rec, _, err := bind(variant, raw, lenient, time.Now())
	if err != nil {
		return nil, err
	}
	return rec.WithID(id), nil
}

// StringFields renders a field mapping, such as a decoded snapshot, back to raw strings.
func StringFields(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		if s, ok := Stringify(value); ok {
			out[name] = s
		}
	}
	return out
}

// Stringify formats a scalar field value. Composite values are rejected.
func Stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case decimal.Decimal:
		return v.String(), true
	case time.Time:
		return v.Format(model.DateLayout), true
	default:
		return "", false
	}
}
