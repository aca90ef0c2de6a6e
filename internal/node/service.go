package node

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/danmuck/ticd/internal/admin"
	"github.com/danmuck/ticd/internal/commands"
	"github.com/danmuck/ticd/internal/config"
	"github.com/danmuck/ticd/internal/dispatch"
	"github.com/danmuck/ticd/internal/observability"
	"github.com/danmuck/ticd/internal/transport/udp"
	"github.com/rs/zerolog"
)

const appName = "ticdd"

// Service owns one dispatch engine, its application, and its transports.
type Service struct {
	cfg    config.NodeConfig
	logger zerolog.Logger
	app    *commands.Application
	engine *dispatch.Engine
	admin  *admin.Server
}

// NewService builds the engine and registers the command application.
// sink receives command words; nil logs them.
func NewService(cfg config.NodeConfig, sink commands.Sink, base zerolog.Logger) (*Service, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	logger := observability.NodeLogger(base, appName, cfg.NodeID)
	if sink == nil {
		sink = commands.LogSink{Logger: logger}
	}

	app := commands.New(
		observability.NewCommandMetrics(cfg.NodeID, sink),
		commands.WithRequireInitData(cfg.RequireInitData),
		commands.WithLogger(logger),
	)
	engine, err := dispatch.NewEngine(
		dispatch.WithLimits(cfg.Limits),
		dispatch.WithPolicy(app.Policy(cfg.PolicyOptions()...)),
		dispatch.WithLogger(logger),
		dispatch.WithObserver(observability.NewDispatchObserver(cfg.NodeID, logger)),
	)
	if err != nil {
		return nil, err
	}
	app.Register(engine)

	s := &Service{cfg: cfg, logger: logger, app: app, engine: engine}
	if cfg.AdminAddr != "" {
		s.admin = admin.New(cfg.NodeID, cfg.AdminAddr, engine, cfg.CorsOrigins, logger, admin.WithToken(cfg.AdminToken))
	}
	return s, nil
}

func (s *Service) Engine() *dispatch.Engine {
	return s.engine
}

func (s *Service) Application() *commands.Application {
	return s.app
}

// Run blocks until SIGINT or SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve listens on the configured UDP address and dispatches until ctx is done.
func (s *Service) Serve(ctx context.Context) error {
	tr, err := udp.Listen(s.cfg.ListenAddr, s.cfg.Limits, udp.WithLogger(s.logger))
	if err != nil {
		return err
	}
	defer tr.Close()
	s.logger.Info().Str("listen", tr.Addr().String()).Msg("udp listening")
	return s.ServeTransport(ctx, tr)
}

// ServeTransport dispatches tasks from tr, and serves the admin surface when
// configured, until ctx is done.
func (s *Service) ServeTransport(ctx context.Context, tr dispatch.Transport) error {
	s.logger.Info().
		Int("payload_bytes", s.cfg.Limits.PayloadBytes).
		Int("meta_bytes", s.cfg.Limits.MetaBytes).
		Int("tasks", len(s.engine.Registered())).
		Bool("ready", s.engine.ApplicationReady()).
		Msg("node serving")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	adminErr := make(chan error, 1)
	if s.admin != nil {
		go func() {
			adminErr <- s.admin.Serve(ctx)
		}()
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- s.engine.Run(ctx, tr)
	}()

	select {
	case err := <-adminErr:
		cancel()
		<-runErr
		return err
	case err := <-runErr:
		cancel()
		if s.admin != nil {
			<-adminErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Info().Msg("node shutdown")
			return nil
		}
		return err
	}
}
