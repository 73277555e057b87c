package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ochronus/gogett/gett"
	"github.com/ochronus/gogett/internal/config"
)

// Container centralizes the core dependencies used across the application.
// It uses interfaces so callers (and tests) can substitute implementations.
type Container struct {
	Config        *config.Config
	Logger        *logrus.Logger
	GettClient    gett.ClientAPI
	Registerer    prometheus.Registerer
	ValidateLogin bool

	loginCtx context.Context
}

// Option allows customizing the container during construction.
type Option func(*Container) error

// WithLogger overrides the default logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithGettClient overrides the default Ge.tt client.
func WithGettClient(client gett.ClientAPI) Option {
	return func(c *Container) error {
		if client == nil {
			return fmt.Errorf("gett client cannot be nil")
		}
		c.GettClient = client
		return nil
	}
}

// WithMetrics registers client metrics on reg. The gogett CLI runs one
// command per process and leaves metrics off; programs embedding the
// container pass their own registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Container) error {
		c.Registerer = reg
		return nil
	}
}

// WithLoginValidation logs in while building the container so bad
// credentials fail early (default: disabled, the client logs in lazily).
func WithLoginValidation(ctx context.Context) Option {
	return func(c *Container) error {
		c.ValidateLogin = true
		c.loginCtx = ctx
		return nil
	}
}

// NewContainer builds a Container with defaults derived from cfg.
// Options can be supplied to override specific dependencies (useful in tests).
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	container := &Container{
		Config: cfg,
		Logger: buildDefaultLogger(cfg.Loglevel),
	}

	// Apply options early so tests can inject mocks before defaults are created.
	for _, opt := range opts {
		if err := opt(container); err != nil {
			return nil, err
		}
	}

	if container.GettClient == nil {
		client, err := buildGettClient(cfg, container.Logger, container.Registerer)
		if err != nil {
			return nil, err
		}
		container.GettClient = client
	}

	if container.ValidateLogin {
		ctx := container.loginCtx
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := container.GettClient.Login(ctx); err != nil {
			return nil, fmt.Errorf("failed to log in to ge.tt: %w", err)
		}
	}

	return container, nil
}

func buildDefaultLogger(levelStr string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func buildGettClient(cfg *config.Config, logger *logrus.Logger, reg prometheus.Registerer) (*gett.Client, error) {
	opts := []gett.Option{
		gett.WithLogger(logger),
		gett.WithTimeout(cfg.TimeoutDuration()),
	}
	if cfg.Gett.BaseURL != "" {
		opts = append(opts, gett.WithBaseURL(cfg.Gett.BaseURL))
	}
	if reg != nil {
		opts = append(opts, gett.WithMetrics(reg))
	}

	client, err := gett.NewClient(cfg.Gett.APIKey, cfg.Gett.Email, cfg.Gett.Password, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gett client: %w", err)
	}
	return client, nil
}
