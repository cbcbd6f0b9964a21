package comments

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/api/auth"
	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes comment management over HTTP (/comentarios)
type Handlers struct {
	service *Service
}

// NewHandlers creates the comment handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// CreateComentarioRequest is the body of POST /comentarios. The author is
// always the authenticated principal.
type CreateComentarioRequest struct {
	Contenido string `json:"contenido" validate:"required"`
	CursoID   int64  `json:"id_curso" validate:"required"`
}

// UpdateComentarioRequest is the body of PUT /comentarios/:id
type UpdateComentarioRequest struct {
	Contenido string `json:"contenido" validate:"required"`
}

// Index lists all comments with authors (GET /comentarios)
func (h *Handlers) Index(c echo.Context) error {
	comentarios, err := h.service.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener los comentarios.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"comentarios": comentarios,
	})
}

// Show returns one comment (GET /comentarios/:id)
func (h *Handlers) Show(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	comentario, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El comentario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al obtener el comentario.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"comentario": comentario,
	})
}

// Store adds a comment authored by the principal (POST /comentarios)
func (h *Handlers) Store(c echo.Context) error {
	user := auth.MustGetUser(c)

	var req CreateComentarioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al agregar el comentario.", err)
	}

	comentario, err := h.service.Create(c.Request().Context(), req.CursoID, user.ID, req.Contenido)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al agregar el comentario.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Comentario agregado correctamente",
		"comentario": comentario,
	})
}

// Update modifies a comment's content (PUT /comentarios/:id). Only the
// comment's author may edit it.
func (h *Handlers) Update(c echo.Context) error {
	user := auth.MustGetUser(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req UpdateComentarioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al actualizar el comentario.", err)
	}

	existing, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El comentario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar el comentario.")
	}
	if existing.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "No tienes permiso para editar este comentario.")
	}

	comentario, err := h.service.Update(c.Request().Context(), id, req.Contenido)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El comentario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al actualizar el comentario.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Comentario actualizado correctamente",
		"comentario": comentario,
	})
}

// Destroy removes a comment (DELETE /comentarios/:id). Only the comment's
// author may delete it.
func (h *Handlers) Destroy(c echo.Context) error {
	user := auth.MustGetUser(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}

	existing, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El comentario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar el comentario.")
	}
	if existing.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "No tienes permiso para eliminar este comentario.")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "El comentario no existe")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al eliminar el comentario.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Comentario eliminado correctamente",
	})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "El comentario no existe")
	}
	return id, nil
}
