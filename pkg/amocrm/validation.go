package amocrm

import (
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	if err := v.RegisterValidation("amo_linkable", isLinkableEntity); err != nil {
		panic("amocrm: registering validators: " + err.Error())
	}

	return v
}

func isLinkableEntity(fl validator.FieldLevel) bool {
	return EntityType(fl.Field().String()).Linkable()
}
