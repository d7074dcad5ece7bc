package grading

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ChristopherDeLaRosa/academia/core"
)

var (
	categoryTag  = "category"
	categoryText = "invalid category"
)

// RegisterValidators registers this package's custom tags on the shared validator instance.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}

// categoryValidation checks that the provided category is in the closed Category set.
func categoryValidation(fl validator.FieldLevel) bool {
	if cat, ok := fl.Field().Interface().(Category); ok {
		return cat.IsValid()
	}
	return false
}
