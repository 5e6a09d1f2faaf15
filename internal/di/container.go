// Package di wires the adapters and the submission use case together.
package di

import (
	"errors"
	"fmt"

	"form-applier/internal/application/port/input"
	"form-applier/internal/application/port/output"
	"form-applier/internal/application/service"
	"form-applier/internal/domain/apperr"
	"form-applier/internal/infrastructure/browser/rod"
	"form-applier/internal/infrastructure/evidence"
	"form-applier/internal/infrastructure/formagent/google"
	"form-applier/internal/infrastructure/logger"
	"form-applier/internal/infrastructure/metrics"
	"form-applier/internal/usecase/submission"
)

type Container struct {
	Logger    output.LoggerPort
	Agents    output.FormAgentRegistry
	Launcher  output.BrowserLauncher
	Metrics   output.MetricsPort
	Submitter input.ApplicationSubmitter

	prom *metrics.Prometheus
}

type Config struct {
	Log        logger.Config
	Browser    rod.Config
	Submission submission.Options
	// Metrics enables the Prometheus recorder; otherwise outcomes are not recorded.
	Metrics bool
}

func DefaultConfig() Config {
	return Config{
		Log:        logger.Config{Level: "info", Format: "console", Name: "applier"},
		Browser:    rod.DefaultConfig(),
		Submission: submission.DefaultOptions(),
	}
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return newContainer(cfg, log)
}

func newContainer(cfg Config, log output.LoggerPort) (*Container, error) {
	launcher, err := rod.NewLauncher(cfg.Browser, log)
	if err != nil {
		_ = log.Close()
		return nil, &apperr.ConfigError{Message: "invalid browser options", Cause: err}
	}

	agents := NewAgentRegistry(log)

	c := &Container{
		Logger:   log,
		Agents:   agents,
		Launcher: launcher,
		Metrics:  metrics.Nop{},
	}
	if cfg.Metrics {
		c.prom = metrics.NewPrometheus()
		c.Metrics = c.prom
	}

	c.Submitter = submission.New(launcher, evidence.NewStore(), c.Metrics, log, cfg.Submission)
	return c, nil
}

// NewAgentRegistry registers every built-in form agent.
func NewAgentRegistry(log output.LoggerPort) *service.FormAgentRegistryImpl {
	agents := service.NewFormAgentRegistry()
	google.RegisterAgents(agents, log)
	return agents
}

// WriteMetrics dumps the run's metrics to path in the Prometheus text format.
func (c *Container) WriteMetrics(path string) error {
	if c.prom == nil {
		return errors.New("metrics are not enabled")
	}
	return c.prom.WriteTextfile(path)
}

func (c *Container) Close() error {
	if c.Logger != nil {
		return c.Logger.Close()
	}
	return nil
}
