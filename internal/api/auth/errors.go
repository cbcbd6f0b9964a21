package auth

import (
	"errors"
)

// Common auth errors
var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid or expired")
	ErrEmailTaken          = errors.New("email already in use")
	ErrUsuarioTaken        = errors.New("usuario already in use")
	ErrDocumentoTaken      = errors.New("numero_documento already in use")
)
