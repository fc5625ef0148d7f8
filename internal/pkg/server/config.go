package server

import (
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Config is the configuration for a GenericAPIServer.
type Config struct {
	Mode        string
	Middlewares []string
	Healthz     bool
	EnablePprof bool

	BindAddress string
	BindPort    int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewConfig returns a Config with sane defaults. WriteTimeout defaults
// to zero (no deadline): query responses stream or run for the life of
// the tool loop, so any fixed bound would sever them mid-flight.
func NewConfig() *Config {
	return &Config{
		Mode:        gin.ReleaseMode,
		Middlewares: []string{},
		Healthz:     true,
		EnablePprof: true,
		BindAddress: "127.0.0.1",
		BindPort:    8320,
		ReadTimeout: 30 * time.Second,
	}
}

// CompletedConfig is a Config that has been completed.
type CompletedConfig struct {
	*Config
}

// Complete fills in any fields not set that are required to have valid data.
func (c *Config) Complete() CompletedConfig {
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	return CompletedConfig{c}
}

// New returns a new instance of GenericAPIServer from the completed config.
func (c CompletedConfig) New() (*GenericAPIServer, error) {
	gin.SetMode(c.Mode)

	s := &GenericAPIServer{
		Engine:       gin.New(),
		address:      c.Address(),
		healthz:      c.Healthz,
		enablePprof:  c.EnablePprof,
		middlewares:  c.Middlewares,
		readTimeout:  c.ReadTimeout,
		writeTimeout: c.WriteTimeout,
	}

	initGenericAPIServer(s)

	return s, nil
}

// Address joins the bind address and port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.BindPort))
}
