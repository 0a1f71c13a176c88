package server

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/config"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

//go:embed static
var staticFiles embed.FS

// DefaultFrameInterval is the minimum time between frames pushed to a client
const DefaultFrameInterval = 100 * time.Millisecond

// Server serves the live preview: a static client, a scene listing and one
// websocket render session per connection
type Server struct {
	port          int
	config        config.Config
	logger        *slog.Logger
	echo          *echo.Echo
	upgrader      websocket.Upgrader
	frameInterval time.Duration

	mu       sync.Mutex
	sessions map[string]struct{}
}

// NewServer creates a new web server. cfg supplies the defaults for every
// session; the client may pick another scene with ?scene=.
func NewServer(port int, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:          port,
		config:        cfg,
		logger:        logger,
		frameInterval: DefaultFrameInterval,
		sessions:      make(map[string]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(corsMiddleware)

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/ws", s.handleWebsocket)
	e.StaticFS("/", echo.MustSubFS(staticFiles, "static"))

	s.echo = e
	return s
}

// SetFrameInterval changes the frame throttle for new sessions
func (s *Server) SetFrameInterval(d time.Duration) {
	s.frameInterval = d
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured port until Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("Starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}
	return nil
}

// Shutdown stops accepting connections and waits for handlers to return
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ActiveSessions returns the number of connected render sessions
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}
		return next(c)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.ActiveSessions(),
	})
}

// handleScenes lists the scene catalogue
func (s *Server) handleScenes(c echo.Context) error {
	return c.JSON(http.StatusOK, scene.List())
}

// sessionConfig resolves the settings for a new session. A scene chosen by
// the client comes with its own camera view.
func (s *Server) sessionConfig(sceneID string) (config.Config, error) {
	cfg := s.config
	if sceneID == "" || sceneID == cfg.Scene {
		return cfg, nil
	}
	_, info, err := scene.Lookup(sceneID)
	if err != nil {
		return cfg, err
	}
	cfg.Scene = info.ID
	cfg.Camera = config.Camera{
		FieldOfView: info.View.FieldOfView,
		LookFrom:    [3]float64{info.View.LookFrom.X, info.View.LookFrom.Y, info.View.LookFrom.Z},
		LookAt:      [3]float64{info.View.LookAt.X, info.View.LookAt.Y, info.View.LookAt.Z},
	}
	return cfg, nil
}

// handleWebsocket upgrades the connection and runs a render session on it
func (s *Server) handleWebsocket(c echo.Context) error {
	cfg, err := s.sessionConfig(c.QueryParam("scene"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	format := c.QueryParam("format")
	switch format {
	case "":
		format = FormatPNG
	case FormatPNG, FormatFloat32:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown frame format " + format})
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written an HTTP error
		s.logger.Warn("Websocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	sess, err := newSession(conn, cfg, s.logger.Handler(), s.frameInterval, format)
	if err != nil {
		s.logger.Error("Failed to start session", "error", err)
		_ = conn.WriteJSON(errorMessage{Type: "error", Message: err.Error()})
		return nil
	}

	s.mu.Lock()
	s.sessions[sess.id] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
	}()

	if err := sess.run(c.Request().Context()); err != nil {
		s.logger.Warn("Session ended with error", "session", sess.id, "error", err)
	} else {
		s.logger.Info("Session closed", "session", sess.id, "samples", sess.renderer.SampleCount())
	}
	return nil
}
