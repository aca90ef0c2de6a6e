package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danmuck/ticd/internal/auth"
	"github.com/danmuck/ticd/internal/observability"
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const Version = "0.1.0"

// Source exposes the dispatch state reported by the admin surface.
type Source interface {
	Registered() []protocol.TaskID
	ApplicationReady() bool
}

// Server is the read-only admin HTTP surface of a node.
type Server struct {
	NodeID  string
	Addr    string
	Started time.Time

	source Source
	router *gin.Engine
	logger zerolog.Logger
	guard  auth.Validator
}

type Option func(*Server)

// WithToken requires a bearer token on /tasks and /metrics. Empty leaves
// them open.
func WithToken(token string) Option {
	return func(s *Server) {
		if token != "" {
			s.guard = auth.StaticToken{Token: token}
		}
	}
}

type TaskInfo struct {
	ID       uint8  `json:"id"`
	Name     string `json:"name"`
	Standard bool   `json:"standard"`
}

func New(nodeID, addr string, source Source, corsOrigins []string, logger zerolog.Logger, opts ...Option) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.Middleware(logger, nodeID))
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		NodeID:  nodeID,
		Addr:    addr,
		Started: time.Now(),
		source:  source,
		router:  r,
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Started).String(),
			"node":    s.NodeID,
			"version": Version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		ready := s.source.ApplicationReady()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":  ready,
			"uptime": time.Since(s.Started).String(),
			"node":   s.NodeID,
		})
	})

	guarded := s.router.Group("/")
	if s.guard != nil {
		guarded.Use(auth.Require(s.guard))
	}
	guarded.GET("/metrics", gin.WrapH(promhttp.Handler()))
	guarded.GET("/tasks", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tasks": ListTasks(s.source)})
	})
}

func ListTasks(source Source) []TaskInfo {
	ids := source.Registered()
	out := make([]TaskInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, TaskInfo{ID: uint8(id), Name: id.String(), Standard: id.Standard()})
	}
	return out
}

// Serve blocks until ctx is done or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("admin listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
