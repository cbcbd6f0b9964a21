package validation

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Nombre string `json:"nombre" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Clave  string `json:"clave" validate:"required,min=8"`
}

func TestStruct(t *testing.T) {
	t.Run("ValidPayloadPasses", func(t *testing.T) {
		err := Struct(samplePayload{Nombre: "Ana", Email: "ana@example.com", Clave: "secreta123"})
		assert.NoError(t, err)
	})

	t.Run("InvalidPayloadFails", func(t *testing.T) {
		err := Struct(samplePayload{Email: "no-es-correo", Clave: "corta"})
		assert.Error(t, err)
	})
}

func TestProblems(t *testing.T) {
	err := Struct(samplePayload{Email: "no-es-correo", Clave: "corta"})
	require.Error(t, err)

	problems := Problems(err)
	assert.Contains(t, problems, "El campo nombre es obligatorio.")
	assert.Contains(t, problems, "El campo email debe ser un correo válido.")
	assert.Contains(t, problems, "El campo clave debe tener un mínimo de 8.")
}

func TestHTTPError(t *testing.T) {
	err := Struct(samplePayload{})
	require.Error(t, err)

	httpErr := HTTPError("Error al registrar el usuario.", err)

	var he *echo.HTTPError
	require.ErrorAs(t, httpErr, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)

	body, ok := he.Message.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Error al registrar el usuario.", body["message"])
	assert.NotEmpty(t, body["errors"])
}
