package categories

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes category management over HTTP (/categorias)
type Handlers struct {
	service *Service
}

// NewHandlers creates the category handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// CategoriaRequest is the body of category create/update requests
type CategoriaRequest struct {
	Nombre      string  `json:"nombre" validate:"required"`
	Descripcion *string `json:"descripcion"`
}

// Index lists all categories (GET /categorias, public)
func (h *Handlers) Index(c echo.Context) error {
	categorias, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener las categorías.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categorias": categorias,
	})
}

// Show returns one category (GET /categorias/:id)
func (h *Handlers) Show(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	categoria, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La categoría no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener la categoría.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categoria": categoria,
	})
}

// Store adds a category (POST /categorias)
func (h *Handlers) Store(c echo.Context) error {
	var req CategoriaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al agregar la categoría.", err)
	}

	categoria, err := h.service.Create(c.Request().Context(), req.Nombre, req.Descripcion)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al agregar la categoría.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":   "Categoría agregada correctamente",
		"categoria": categoria,
	})
}

// Update modifies a category (PUT /categorias/:id)
func (h *Handlers) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req CategoriaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al actualizar la categoría.", err)
	}

	categoria, err := h.service.Update(c.Request().Context(), id, req.Nombre, req.Descripcion)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La categoría no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar la categoría.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Categoría actualizada correctamente",
		"categoria": categoria,
	})
}

// Destroy removes a category (DELETE /categorias/:id)
func (h *Handlers) Destroy(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La categoría no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar la categoría.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Categoría eliminada correctamente",
	})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "La categoría no existe")
	}
	return id, nil
}
