package auth

import (
	"database/sql"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/aulavirtual/internal/validation"
	"github.com/aulavirtual/pkg/models"
)

// AuthHandlers contains the authentication handler methods
type AuthHandlers struct {
	tokenService *TokenService
	db           *sql.DB
}

// NewAuthHandlers creates a new authentication handlers instance
func NewAuthHandlers(tokenService *TokenService, db *sql.DB) *AuthHandlers {
	return &AuthHandlers{
		tokenService: tokenService,
		db:           db,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Usuario   *models.User `json:"usuario"`
	TokenPair *TokenPair   `json:"tokens"`
}

// RegisterRequest mirrors the fields the registration form submits
type RegisterRequest struct {
	Nombre          string  `json:"nombre" validate:"required"`
	Apellido        string  `json:"apellido" validate:"required"`
	NumeroDocumento string  `json:"numero_documento" validate:"required"`
	Usuario         string  `json:"usuario" validate:"required"`
	FechaNacimiento string  `json:"fecha_nacimiento" validate:"required"`
	Direccion       string  `json:"direccion" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Imagen          *string `json:"imagen"`
	Password        string  `json:"password" validate:"required,min=8"`
	TipoDocumentoID int64   `json:"id_tipo_documento" validate:"required"`
	RolID           int64   `json:"id_rol" validate:"required"`
}

// RefreshRequest represents the token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Document numbers are 8 digits, or 10 for extended formats
var documentoPattern = regexp.MustCompile(`^\d{8}(?:\d{2})?$`)

// Login handles user authentication with email/password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Credenciales incompletas.", err)
	}

	user := &models.User{}
	err := h.db.QueryRow(`
		SELECT id, nombre, apellido, numero_documento, usuario, fecha_nacimiento,
		       direccion, email, imagen, password_hash, id_tipo_documento, id_rol,
		       created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email).Scan(
		&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento, &user.Usuario,
		&user.FechaNacimiento, &user.Direccion, &user.Email, &user.Imagen,
		&user.PasswordHash, &user.TipoDocumentoID, &user.RolID,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusUnauthorized, "Correo o contraseña incorrectos.")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al iniciar sesión.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Correo o contraseña incorrectos.")
	}

	tokenPair, err := h.tokenService.CreateTokenPair(user, c.Request().Header.Get("User-Agent"), c.RealIP())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al crear la sesión.")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Usuario:   user,
		TokenPair: tokenPair,
	})
}

// Register handles new user registration (POST /registrarse)
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al registrar el usuario.", err)
	}
	if !documentoPattern.MatchString(req.NumeroDocumento) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message": "Error al registrar el usuario.",
			"errors":  []string{"El número de documento no tiene un formato válido."},
		})
	}

	// Uniqueness checks mirror the users table constraints so the caller gets
	// a clear message instead of a constraint violation.
	if err := h.checkUnique(req.Email, req.Usuario, req.NumeroDocumento); err != nil {
		switch err {
		case ErrEmailTaken:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "El correo electrónico ya está en uso.")
		case ErrUsuarioTaken:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "El nombre de usuario ya está en uso.")
		case ErrDocumentoTaken:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "El número de documento ya está en uso.")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error al registrar el usuario.")
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al registrar el usuario.")
	}

	user := &models.User{}
	err = h.db.QueryRow(`
		INSERT INTO users (nombre, apellido, numero_documento, usuario, fecha_nacimiento,
		                   direccion, email, imagen, password_hash, id_tipo_documento, id_rol,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, nombre, apellido, numero_documento, usuario, fecha_nacimiento,
		          direccion, email, imagen, password_hash, id_tipo_documento, id_rol,
		          created_at, updated_at
	`, req.Nombre, req.Apellido, req.NumeroDocumento, req.Usuario, req.FechaNacimiento,
		req.Direccion, req.Email, req.Imagen, string(hashedPassword), req.TipoDocumentoID, req.RolID,
	).Scan(
		&user.ID, &user.Nombre, &user.Apellido, &user.NumeroDocumento, &user.Usuario,
		&user.FechaNacimiento, &user.Direccion, &user.Email, &user.Imagen,
		&user.PasswordHash, &user.TipoDocumentoID, &user.RolID,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al registrar el usuario.")
	}

	tokenPair, err := h.tokenService.CreateTokenPair(user, c.Request().Header.Get("User-Agent"), c.RealIP())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al crear la sesión.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Usuario registrado exitosamente.",
		"usuario": user,
		"tokens":  tokenPair,
	})
}

// Logout handles user logout (revokes the current session token)
func (h *AuthHandlers) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return echo.NewHTTPError(http.StatusBadRequest, "Authorization header required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := h.tokenService.parseTokenClaims(tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if err := h.tokenService.RevokeToken(claims.TokenHash, "session"); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al cerrar sesión.")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Sesión cerrada exitosamente.",
	})
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Solicitud inválida.", err)
	}

	tokenPair, err := h.tokenService.RefreshTokenPair(req.RefreshToken, c.Request().Header.Get("User-Agent"), c.RealIP())
	if err != nil {
		if err == ErrRefreshTokenInvalid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token inválido o expirado.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al renovar la sesión.")
	}

	return c.JSON(http.StatusOK, tokenPair)
}

// Me returns the authenticated principal (GET /user)
func (h *AuthHandlers) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, MustGetUser(c))
}

func (h *AuthHandlers) checkUnique(email, usuario, documento string) error {
	var existing int64

	err := h.db.QueryRow("SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return ErrEmailTaken
	}
	if err != sql.ErrNoRows {
		return err
	}

	err = h.db.QueryRow("SELECT id FROM users WHERE usuario = $1", usuario).Scan(&existing)
	if err == nil {
		return ErrUsuarioTaken
	}
	if err != sql.ErrNoRows {
		return err
	}

	err = h.db.QueryRow("SELECT id FROM users WHERE numero_documento = $1", documento).Scan(&existing)
	if err == nil {
		return ErrDocumentoTaken
	}
	if err != sql.ErrNoRows {
		return err
	}

	return nil
}
