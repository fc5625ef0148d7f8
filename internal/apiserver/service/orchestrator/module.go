package orchestrator

import (
	"context"
	"fmt"

	"github.com/mentatproj/mentat/pkg/logger"
)

// Config is the orchestrator module configuration.
type Config struct {
	Executor ToolExecutor
	Models   ModelBuilder

	// MaxIterations bounds model round-trips per query. Zero selects
	// the default.
	MaxIterations int
}

// CompletedConfig is the completed configuration for the orchestrator.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return CompletedConfig{c}
}

// Module is the top-level orchestrator module.
type Module struct {
	Orchestrator *Orchestrator
}

// New creates the orchestrator module.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	if c.Executor == nil {
		return nil, fmt.Errorf("orchestrator requires a tool executor")
	}
	if c.Models == nil {
		return nil, fmt.Errorf("orchestrator requires a model builder")
	}

	logger.Info("[Orchestrator] module initialized (max %d iterations)", c.MaxIterations)
	return &Module{
		Orchestrator: NewOrchestrator(c.Executor, c.Models, c.MaxIterations),
	}, nil
}
