package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Currency validation
	validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		currency := fl.Field().String()
		return currency == "primary" || currency == "secondary"
	})

	// Content type validation
	validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		ct := fl.Field().String()
		validTypes := []string{"none", "text", "link", "file", "youtube", ""}
		for _, t := range validTypes {
			if ct == t {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too small"
		case "max":
			errors[field] = "Value is too large"
		case "url":
			errors[field] = "Must be a valid URL"
		case "currency":
			errors[field] = "Must be 'primary' or 'secondary'"
		case "content_type":
			errors[field] = "Must be one of: none, text, link, file, youtube"
		case "oneof":
			errors[field] = "Invalid value"
		default:
			errors[field] = "Invalid value"
		}
	}
	return errors
}
