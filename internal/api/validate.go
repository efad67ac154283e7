package api

import (
	"fmt"
	"reflect"
	"strings"

	apperrors "coworking/internal/errors"
	"coworking/internal/utils"

	"github.com/go-playground/validator/v10"
)

const msgInvalidData = "The given data was invalid."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseTimestamp(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

// validateRequest runs the struct tags on req and turns failures into a 422
// keyed by JSON field name.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Internal("An error occurred while validating the request", err)
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return apperrors.Validation(msgInvalidData, fields)
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "timestamp":
		return fmt.Sprintf("The %s is not a valid date.", label)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "singleline":
		return fmt.Sprintf("The %s may not contain line breaks.", label)
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("The selected %s is invalid.", label)
	}
	return fmt.Sprintf("The %s field is invalid.", label)
}
