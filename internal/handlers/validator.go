package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts validator/v10 to echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		param := fe.Param()

		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "min":
			if fe.Kind() == reflect.Slice {
				messages = append(messages, field+" must contain at least "+param+" items")
			} else {
				messages = append(messages, field+" must be at least "+param)
			}
		case "max":
			if fe.Kind() == reflect.String {
				messages = append(messages, field+" must be at most "+param+" characters")
			} else if fe.Kind() == reflect.Slice {
				messages = append(messages, field+" must contain at most "+param+" items")
			} else {
				messages = append(messages, field+" must be at most "+param)
			}
		case "email":
			messages = append(messages, field+" must be a valid email")
		case "oneof":
			messages = append(messages, field+" must be one of: "+param)
		case "gt":
			messages = append(messages, field+" must be greater than "+param)
		default:
			messages = append(messages, field+" is invalid")
		}
	}
	return errors.New(strings.Join(messages, ", "))
}
