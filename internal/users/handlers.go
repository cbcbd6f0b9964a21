package users

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes user management over HTTP (/usuarios)
type Handlers struct {
	service *Service
}

// NewHandlers creates the user handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// UpdateUserRequest is the body of PUT /usuarios/:id
type UpdateUserRequest struct {
	Nombre          string  `json:"nombre" validate:"required"`
	Apellido        string  `json:"apellido" validate:"required"`
	Usuario         string  `json:"usuario" validate:"required"`
	FechaNacimiento string  `json:"fecha_nacimiento" validate:"required"`
	Direccion       string  `json:"direccion" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Imagen          *string `json:"imagen"`
}

// SearchRequest is the body of POST /usuarios/buscar
type SearchRequest struct {
	Busqueda string `json:"busqueda" validate:"required"`
}

// Index lists all users (GET /usuarios)
func (h *Handlers) Index(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener los usuarios.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"usuarios": users,
	})
}

// Show returns one user (GET /usuarios/:id)
func (h *Handlers) Show(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El usuario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener el usuario.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"usuario": user,
	})
}

// Update modifies a user's editable fields (PUT /usuarios/:id)
func (h *Handlers) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al actualizar el usuario.", err)
	}

	user, err := h.service.Update(c.Request().Context(), id,
		req.Nombre, req.Apellido, req.Usuario, req.FechaNacimiento,
		req.Direccion, req.Email, req.Imagen)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El usuario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar el usuario.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Usuario actualizado correctamente",
		"usuario": user,
	})
}

// Destroy removes a user (DELETE /usuarios/:id)
func (h *Handlers) Destroy(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El usuario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar el usuario.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Usuario eliminado correctamente",
	})
}

// Search finds users by name, username or email (POST /usuarios/buscar)
func (h *Handlers) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al buscar usuarios.", err)
	}

	users, err := h.service.Search(c.Request().Context(), req.Busqueda)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al buscar usuarios.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"usuarios": users,
	})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "El usuario no existe")
	}
	return id, nil
}
