package lessons

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes lesson management over HTTP (/lecciones)
type Handlers struct {
	service *Service
}

// NewHandlers creates the lesson handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// LeccionRequest is the body of lesson create/update requests
type LeccionRequest struct {
	Titulo      string `json:"titulo" validate:"required"`
	Descripcion string `json:"descripcion" validate:"required"`
	CursoID     int64  `json:"id_curso" validate:"required"`
}

// Index lists all lessons (GET /lecciones)
func (h *Handlers) Index(c echo.Context) error {
	lecciones, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener las lecciones.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lecciones": lecciones,
	})
}

// Show returns one lesson (GET /lecciones/:id)
func (h *Handlers) Show(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	leccion, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La lección no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener la lección.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"leccion": leccion,
	})
}

// Store adds a lesson to a course (POST /lecciones)
func (h *Handlers) Store(c echo.Context) error {
	var req LeccionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al agregar la lección.", err)
	}

	leccion, err := h.service.Create(c.Request().Context(), LeccionInput{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		CursoID:     req.CursoID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al agregar la lección.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Lección agregada correctamente",
		"leccion": leccion,
	})
}

// Update modifies a lesson (PUT /lecciones/:id)
func (h *Handlers) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req LeccionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al actualizar la lección.", err)
	}

	leccion, err := h.service.Update(c.Request().Context(), id, LeccionInput{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		CursoID:     req.CursoID,
	})
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La lección no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar la lección.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Lección actualizada correctamente",
		"leccion": leccion,
	})
}

// Destroy removes a lesson (DELETE /lecciones/:id)
func (h *Handlers) Destroy(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La lección no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar la lección.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Lección eliminada correctamente",
	})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "La lección no existe")
	}
	return id, nil
}
