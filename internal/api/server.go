package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/aulavirtual/internal/api/auth"
	"github.com/aulavirtual/internal/broadcast"
	"github.com/aulavirtual/internal/categories"
	"github.com/aulavirtual/internal/chat"
	"github.com/aulavirtual/internal/comments"
	"github.com/aulavirtual/internal/config"
	"github.com/aulavirtual/internal/courses"
	"github.com/aulavirtual/internal/enrollments"
	"github.com/aulavirtual/internal/lessonfiles"
	"github.com/aulavirtual/internal/lessons"
	"github.com/aulavirtual/internal/users"
)

// Server wires the HTTP layer: routes, auth middleware and the services
// behind them.
type Server struct {
	echo        *echo.Echo
	cfg         *config.Config
	db          *sql.DB
	broadcaster *broadcast.Broadcaster
}

// NewServer creates the API server with all routes registered. databaseURL is
// needed separately because the broadcaster runs its own pgx pool.
func NewServer(cfg *config.Config, db *sql.DB, databaseURL string) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	broadcaster, err := broadcast.NewBroadcaster(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create broadcaster: %w", err)
	}

	server := &Server{
		echo:        e,
		cfg:         cfg,
		db:          db,
		broadcaster: broadcaster,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	tokenService := auth.NewTokenService(s.db, s.cfg.Auth.JWTSecret)
	tokenService.AccessTokenDuration = time.Duration(s.cfg.Auth.AccessTokenMinutes) * time.Minute
	tokenService.RefreshTokenDuration = time.Duration(s.cfg.Auth.RefreshTokenDays) * 24 * time.Hour
	tokenService.StartCleanupScheduler()

	authHandlers := auth.NewAuthHandlers(tokenService, s.db)

	userService := users.NewService(s.db)
	userHandlers := users.NewHandlers(userService)

	courseService := courses.NewService(s.db)
	courseHandlers := courses.NewHandlers(courseService)

	lessonService := lessons.NewService(s.db)
	lessonHandlers := lessons.NewHandlers(lessonService)

	fileService := lessonfiles.NewService(s.db)
	fileHandlers := lessonfiles.NewHandlers(fileService)

	categoryService := categories.NewService(s.db)
	categoryHandlers := categories.NewHandlers(categoryService)

	commentService := comments.NewService(s.db)
	commentHandlers := comments.NewHandlers(commentService)

	enrollmentService := enrollments.NewService(s.db)
	enrollmentHandlers := enrollments.NewHandlers(enrollmentService)

	chatService := chat.NewService(
		chat.NewPgConversationRepository(s.db),
		chat.NewPgMessageRepository(s.db),
		userService,
		s.broadcaster,
		s.cfg.Broadcast.Channel,
	)
	chatHandlers := chat.NewHandlers(chatService)

	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// Public routes
	s.echo.POST("/login", authHandlers.Login, auth.LoginRateLimit(s.cfg.Auth.LoginRequestsPerMin))
	s.echo.POST("/registrarse", authHandlers.Register)
	s.echo.GET("/cursos", courseHandlers.Index)
	s.echo.GET("/cursos/:curso", courseHandlers.Show)
	s.echo.GET("/categorias", categoryHandlers.Index)

	// Everything else requires a valid session token
	protected := s.echo.Group("", auth.RequireAuth(tokenService))

	protected.GET("/user", authHandlers.Me)
	protected.POST("/logout", authHandlers.Logout)
	protected.POST("/refresh", authHandlers.Refresh)

	protected.GET("/usuarios", userHandlers.Index)
	protected.POST("/usuarios/buscar", userHandlers.Search)
	protected.GET("/usuarios/:id", userHandlers.Show)
	protected.PUT("/usuarios/:id", userHandlers.Update)
	protected.DELETE("/usuarios/:id", userHandlers.Destroy)

	protected.POST("/cursos", courseHandlers.Store)
	protected.PUT("/cursos/:curso", courseHandlers.Update)
	protected.DELETE("/cursos/:curso", courseHandlers.Destroy)
	protected.GET("/cursos-populares", courseHandlers.Popular)
	protected.GET("/cursos/docente/:idDocente", courseHandlers.ByDocente)
	protected.GET("/cursos/estudiante/:idEstudiante", courseHandlers.ByEstudiante)

	protected.GET("/lecciones", lessonHandlers.Index)
	protected.GET("/lecciones/:id", lessonHandlers.Show)
	protected.POST("/lecciones", lessonHandlers.Store)
	protected.PUT("/lecciones/:id", lessonHandlers.Update)
	protected.DELETE("/lecciones/:id", lessonHandlers.Destroy)

	protected.POST("/archivo-leccion", fileHandlers.Store)
	protected.DELETE("/archivo-leccion/:id", fileHandlers.Destroy)

	protected.GET("/categorias/:id", categoryHandlers.Show)
	protected.POST("/categorias", categoryHandlers.Store)
	protected.PUT("/categorias/:id", categoryHandlers.Update)
	protected.DELETE("/categorias/:id", categoryHandlers.Destroy)

	protected.GET("/comentarios", commentHandlers.Index)
	protected.GET("/comentarios/:id", commentHandlers.Show)
	protected.POST("/comentarios", commentHandlers.Store)
	protected.PUT("/comentarios/:id", commentHandlers.Update)
	protected.DELETE("/comentarios/:id", commentHandlers.Destroy)

	protected.GET("/inscripcion", enrollmentHandlers.Index)
	protected.GET("/inscripcion/:id", enrollmentHandlers.Show)
	protected.POST("/inscripcion", enrollmentHandlers.Store)
	protected.PUT("/inscripcion/:id", enrollmentHandlers.Update)
	protected.DELETE("/inscripcion/:id", enrollmentHandlers.Destroy)

	// /chat/conversaciones is registered before /chat/:conversacion; echo
	// resolves the static segment first either way, but the explicit order
	// keeps the intent visible.
	protected.GET("/chat", chatHandlers.Index)
	protected.GET("/chat/conversaciones", chatHandlers.List)
	protected.POST("/chat/conversaciones/crear", chatHandlers.Create)
	protected.GET("/chat/:conversacion", chatHandlers.Show)
	protected.POST("/chat/:conversacion/enviar-mensaje", chatHandlers.SendMessage)
}

// Start runs the broadcaster workers and the HTTP listener, then blocks until
// an interrupt arrives and shuts both down.
func (s *Server) Start() error {
	ctx := context.Background()

	if err := s.broadcaster.Start(ctx); err != nil {
		return fmt.Errorf("failed to start broadcaster: %w", err)
	}

	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	log.Info().Int("port", s.cfg.Server.Port).Msg("API server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.broadcaster.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("broadcaster shutdown failed")
	}

	return s.echo.Shutdown(shutdownCtx)
}
