package apiary

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"apiary-api-server/internal/apperr"
	"apiary-api-server/internal/models"

	"github.com/go-playground/validator/v10"
)

// Field errors are reported under their wire names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Supply quantities may be negative.
func validateSupply(s *models.SupplyItem) error {
	return check(models.KindSupply, s)
}

func validateHive(h *models.Hive) error {
	return check(models.KindHive, h)
}

func validateHarvest(h *models.Harvest) error {
	return check(models.KindHarvest, h)
}

// check runs the struct's validate tags and reports the first failure as an
// InvalidInput error on that field.
func check(kind string, doc interface{}) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal(kind, err)
	}
	fe := fieldErrs[0]
	return apperr.Invalid(kind, fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "min":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must not be negative, got %v", field, fe.Value())
		}
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
