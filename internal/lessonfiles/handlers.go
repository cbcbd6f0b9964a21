package lessonfiles

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes lesson file management over HTTP (/archivo-leccion)
type Handlers struct {
	service *Service
}

// NewHandlers creates the lesson file handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// ArchivoRequest is the body of POST /archivo-leccion
type ArchivoRequest struct {
	Nombre    string `json:"nombre" validate:"required"`
	Tipo      string `json:"tipo" validate:"required"`
	Ubicacion string `json:"ubicacion" validate:"required"`
	LeccionID int64  `json:"id_leccion" validate:"required"`
}

// Store attaches a file to a lesson (POST /archivo-leccion)
func (h *Handlers) Store(c echo.Context) error {
	var req ArchivoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al agregar el archivo a la lección.", err)
	}

	leccion, err := h.service.Create(c.Request().Context(), ArchivoInput{
		Nombre:    req.Nombre,
		Tipo:      req.Tipo,
		Ubicacion: req.Ubicacion,
		LeccionID: req.LeccionID,
	})
	if err != nil {
		if err == ErrLeccionNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La lección no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al agregar el archivo a la lección.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Archivo agregado correctamente a la lección.",
		"leccion": leccion,
	})
}

// Destroy removes a lesson file (DELETE /archivo-leccion/:id)
func (h *Handlers) Destroy(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "El archivo no existe")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El archivo no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar el archivo de la lección.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Archivo eliminado correctamente de la lección.",
	})
}
