package validation

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request payload against its `validate` tags.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Problems flattens a validator error into per-field messages.
func Problems(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("El campo %s es obligatorio.", field))
		case "email":
			problems = append(problems, fmt.Sprintf("El campo %s debe ser un correo válido.", field))
		case "min":
			problems = append(problems, fmt.Sprintf("El campo %s debe tener un mínimo de %s.", field, fe.Param()))
		case "max":
			problems = append(problems, fmt.Sprintf("El campo %s supera el máximo de %s.", field, fe.Param()))
		case "numeric":
			problems = append(problems, fmt.Sprintf("El campo %s debe ser numérico.", field))
		default:
			problems = append(problems, fmt.Sprintf("El campo %s no es válido.", field))
		}
	}
	return problems
}

// HTTPError converts a validation failure into the API's standard 422 shape.
func HTTPError(message string, err error) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
		"message": message,
		"errors":  Problems(err),
	})
}
