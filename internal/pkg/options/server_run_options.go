// Package options holds flag-backed option groups shared by binaries.
package options

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/mentatproj/mentat/internal/pkg/server"
)

// ServerRunOptions contains the options for the generic HTTP server.
type ServerRunOptions struct {
	Mode        string   `json:"mode"        mapstructure:"mode"`
	Healthz     bool     `json:"healthz"     mapstructure:"healthz"`
	Middlewares []string `json:"middlewares" mapstructure:"middlewares"`
	BindAddress string   `json:"bind_address" mapstructure:"bind_address"`
	BindPort    int      `json:"bind_port"    mapstructure:"bind_port"`

	ReadTimeout  time.Duration `json:"read_timeout"  mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
}

// NewServerRunOptions creates ServerRunOptions with defaults.
func NewServerRunOptions() *ServerRunOptions {
	defaults := server.NewConfig()

	return &ServerRunOptions{
		Mode:         defaults.Mode,
		Healthz:      defaults.Healthz,
		Middlewares:  defaults.Middlewares,
		BindAddress:  defaults.BindAddress,
		BindPort:     defaults.BindPort,
		ReadTimeout:  defaults.ReadTimeout,
		WriteTimeout: defaults.WriteTimeout,
	}
}

// ApplyTo applies the run options to the server config.
func (s *ServerRunOptions) ApplyTo(c *server.Config) error {
	c.Mode = s.Mode
	c.Healthz = s.Healthz
	c.Middlewares = s.Middlewares
	c.BindAddress = s.BindAddress
	c.BindPort = s.BindPort
	c.ReadTimeout = s.ReadTimeout
	c.WriteTimeout = s.WriteTimeout

	return nil
}

// Validate checks the options.
func (s *ServerRunOptions) Validate() []error {
	var errs []error

	switch s.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("invalid server mode %q", s.Mode))
	}
	if s.BindPort < 1 || s.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("bind port %d must be between 1 and 65535", s.BindPort))
	}

	return errs
}

// AddFlags adds flags for the generic server to the given flag set.
func (s *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.Mode, "server.mode", s.Mode,
		"Start the server in a specified server mode: release, debug, test.")
	fs.BoolVar(&s.Healthz, "server.healthz", s.Healthz,
		"Add self readiness check and install /healthz router.")
	fs.StringSliceVar(&s.Middlewares, "server.middlewares", s.Middlewares,
		"List of allowed middlewares for server, comma separated.")
	fs.StringVar(&s.BindAddress, "server.bind-address", s.BindAddress,
		"The IP address on which to serve.")
	fs.IntVar(&s.BindPort, "server.bind-port", s.BindPort,
		"The port on which to serve.")
	fs.DurationVar(&s.ReadTimeout, "server.read-timeout", s.ReadTimeout,
		"Maximum duration for reading an incoming request. Set to zero to disable.")
	fs.DurationVar(&s.WriteTimeout, "server.write-timeout", s.WriteTimeout,
		"Maximum duration for writing a response. Zero (the default) disables the "+
			"deadline; streamed and long-running query responses need it off.")
}
