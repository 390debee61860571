package service

import (
	"log/slog"

	"issuer-gateway/internal/audit"
	"issuer-gateway/internal/issuance/metrics"
)

// serviceConfig carries the ambient collaborators shared by every component
// in this package. All of them are optional; nil metrics and audit publishers
// are no-ops and a nil logger discards.
type serviceConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(c *serviceConfig) {
		c.audit = publisher
	}
}

func newServiceConfig(opts ...Option) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
