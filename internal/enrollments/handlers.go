package enrollments

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/api/auth"
	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes enrollment management over HTTP (/inscripcion)
type Handlers struct {
	service *Service
}

// NewHandlers creates the enrollment handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// CreateInscripcionRequest is the body of POST /inscripcion. The student is
// always the authenticated principal.
type CreateInscripcionRequest struct {
	CursoID int64 `json:"id_curso" validate:"required"`
}

// UpdateInscripcionRequest is the body of PUT /inscripcion/:id
type UpdateInscripcionRequest struct {
	Estado bool `json:"estado"`
}

// Index lists the principal's enrollments (GET /inscripcion)
func (h *Handlers) Index(c echo.Context) error {
	user := auth.MustGetUser(c)

	inscripciones, err := h.service.ListForStudent(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener las inscripciones.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"inscripciones": inscripciones,
	})
}

// Show returns one enrollment (GET /inscripcion/:id)
func (h *Handlers) Show(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	inscripcion, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La inscripción no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener la inscripción.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"inscripcion": inscripcion,
	})
}

// Store enrolls the principal in a course (POST /inscripcion)
func (h *Handlers) Store(c echo.Context) error {
	user := auth.MustGetUser(c)

	var req CreateInscripcionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al inscribirse en el curso.", err)
	}

	inscripcion, err := h.service.Create(c.Request().Context(), req.CursoID, user.ID)
	if err != nil {
		switch err {
		case ErrCursoNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "El curso no existe")
		case ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Ya estás inscrito en este curso.")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error al inscribirse en el curso.")
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "Inscripción realizada correctamente",
		"inscripcion": inscripcion,
	})
}

// Update flips an enrollment's active flag (PUT /inscripcion/:id)
func (h *Handlers) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req UpdateInscripcionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}

	inscripcion, err := h.service.UpdateEstado(c.Request().Context(), id, req.Estado)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La inscripción no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar la inscripción.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Inscripción actualizada correctamente",
		"inscripcion": inscripcion,
	})
}

// Destroy removes an enrollment (DELETE /inscripcion/:id). Only the enrolled
// student may remove it.
func (h *Handlers) Destroy(c echo.Context) error {
	user := auth.MustGetUser(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}

	existing, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La inscripción no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar la inscripción.")
	}
	if existing.EstudianteID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "No tienes permiso para eliminar esta inscripción.")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "La inscripción no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar la inscripción.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Inscripción eliminada correctamente",
	})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "La inscripción no existe")
	}
	return id, nil
}
