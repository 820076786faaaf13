package record

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"

	"idatech-backoffice/internal/model"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	decimalGte0Tag = "decimal_gte0"
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are validated through their canonical string form.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation(decimalGte0Tag, decimalGte0)
	_ = validate.RegisterTranslation(decimalGte0Tag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return "must be a non-negative decimal"
		})
}

func decimalGte0(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

// check runs struct validation and merges the result with earlier coercion failures.
func check(rec model.Record, coercion map[string]string) error {
	fields := make(map[string]string, len(coercion))
	for name, reason := range coercion {
		fields[name] = reason
	}

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if _, exists := fields[fe.Field()]; exists {
				continue
			}
			fields[fe.Field()] = fe.Translate(translator)
		}
	}

	if len(fields) > 0 {
		return model.NewValidationError(fields)
	}
	return nil
}
