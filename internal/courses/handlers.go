package courses

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes the course catalog over HTTP (/cursos)
type Handlers struct {
	service *Service
}

// NewHandlers creates the course handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// CursoRequest is the body of course create/update requests
type CursoRequest struct {
	Titulo      string  `json:"titulo" validate:"required"`
	Imagen      *string `json:"imagen"`
	Duracion    string  `json:"duracion" validate:"required"`
	Estado      int     `json:"estado"`
	FechaInicio string  `json:"fecha_inicio" validate:"required"`
	FechaFin    string  `json:"fecha_fin" validate:"required"`
	Descripcion string  `json:"descripcion" validate:"required"`
	DocenteID   int64   `json:"id_docente"`
	CategoriaID int64   `json:"id_categoria" validate:"required"`
}

// Index lists all courses with relations (GET /cursos, public)
func (h *Handlers) Index(c echo.Context) error {
	cursos, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener los cursos.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cursos": cursos,
	})
}

// Show returns one course with relations (GET /cursos/:curso, public)
func (h *Handlers) Show(c echo.Context) error {
	id, err := param(c, "curso", "El curso no existe")
	if err != nil {
		return err
	}

	curso, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El curso no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener el curso.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"curso": curso,
	})
}

// Store registers a new course (POST /cursos)
func (h *Handlers) Store(c echo.Context) error {
	var req CursoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al agregar el curso.", err)
	}

	curso, err := h.service.Create(c.Request().Context(), CursoInput{
		Titulo:      req.Titulo,
		Imagen:      req.Imagen,
		Duracion:    req.Duracion,
		Estado:      req.Estado,
		FechaInicio: req.FechaInicio,
		FechaFin:    req.FechaFin,
		Descripcion: req.Descripcion,
		DocenteID:   req.DocenteID,
		CategoriaID: req.CategoriaID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al agregar el curso.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Curso agregado correctamente",
		"curso":   curso,
	})
}

// Update modifies an existing course (PUT /cursos/:curso)
func (h *Handlers) Update(c echo.Context) error {
	id, err := param(c, "curso", "El curso no existe")
	if err != nil {
		return err
	}

	var req CursoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al actualizar el curso.", err)
	}

	curso, err := h.service.Update(c.Request().Context(), id, CursoInput{
		Titulo:      req.Titulo,
		Imagen:      req.Imagen,
		Duracion:    req.Duracion,
		Estado:      req.Estado,
		FechaInicio: req.FechaInicio,
		FechaFin:    req.FechaFin,
		Descripcion: req.Descripcion,
		CategoriaID: req.CategoriaID,
	})
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El curso no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar el curso.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Curso actualizado correctamente",
		"curso":   curso,
	})
}

// Destroy removes a course and its enrollments (DELETE /cursos/:curso)
func (h *Handlers) Destroy(c echo.Context) error {
	id, err := param(c, "curso", "El curso no existe")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El curso no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar el curso.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Curso eliminado correctamente",
	})
}

// Popular returns the most enrolled courses (GET /cursos-populares)
func (h *Handlers) Popular(c echo.Context) error {
	cursos, err := h.service.Popular(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener los cursos más populares.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cursosPopulares": cursos,
	})
}

// ByDocente lists a docente's courses (GET /cursos/docente/:idDocente)
func (h *Handlers) ByDocente(c echo.Context) error {
	id, err := param(c, "idDocente", "El docente no existe")
	if err != nil {
		return err
	}

	cursos, err := h.service.ByDocente(c.Request().Context(), id)
	if err != nil {
		if err == ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El docente no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener los cursos del docente.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cursos": cursos,
	})
}

// ByEstudiante lists a student's enrolled courses
// (GET /cursos/estudiante/:idEstudiante)
func (h *Handlers) ByEstudiante(c echo.Context) error {
	id, err := param(c, "idEstudiante", "El estudiante no existe")
	if err != nil {
		return err
	}

	cursos, err := h.service.ByEstudiante(c.Request().Context(), id)
	if err != nil {
		if err == ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El estudiante no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener los cursos del estudiante.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cursos": cursos,
	})
}

func param(c echo.Context, name, notFoundMessage string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, notFoundMessage)
	}
	return id, nil
}
