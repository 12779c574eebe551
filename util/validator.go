package util

import (
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("status", validateStatus)
}

func validateStatus(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(model.Status)
	return ok && status.Valid()
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
