// Package options aggregates the apiserver's run options: generic
// serving, gRPC, model providers, MCP registry and persistence.
package options

import (
	"github.com/spf13/pflag"

	genericoptions "github.com/mentatproj/mentat/internal/pkg/options"
	"github.com/mentatproj/mentat/internal/pkg/server"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

type Options struct {
	GenericServerRunOptions *genericoptions.ServerRunOptions `json:"serving" mapstructure:"serving"`
	GRPCOptions             *genericoptions.GRPCOptions      `json:"grpc"    mapstructure:"grpc"`
	ModelOptions            *genericoptions.ModelOptions     `json:"models"  mapstructure:"models"`
	MCPOptions              *genericoptions.MCPOptions       `json:"mcp"     mapstructure:"mcp"`
	StoreOptions            *genericoptions.StoreOptions     `json:"store"   mapstructure:"store"`
}

func NewOptions() *Options {
	return &Options{
		GenericServerRunOptions: genericoptions.NewServerRunOptions(),
		GRPCOptions:             genericoptions.NewGRPCOptions(),
		ModelOptions:            genericoptions.NewModelOptions(),
		MCPOptions:              genericoptions.NewMCPOptions(),
		StoreOptions:            genericoptions.NewStoreOptions(),
	}
}

// AddFlags registers every option group on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.GenericServerRunOptions.AddFlags(fs)
	o.GRPCOptions.AddFlags(fs)
	o.ModelOptions.AddFlags(fs)
	o.MCPOptions.AddFlags(fs)
	o.StoreOptions.AddFlags(fs)
}

// Validate checks every option group.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.GenericServerRunOptions.Validate()...)
	errs = append(errs, o.GRPCOptions.Validate()...)
	errs = append(errs, o.ModelOptions.Validate()...)
	if err := o.MCPOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.StoreOptions.Validate()...)
	return errs
}

// ApplyTo applies the run options to the server config.
func (o *Options) ApplyTo(c *server.Config) error {
	return o.GenericServerRunOptions.ApplyTo(c)
}

// Complete sets default Options.
func (o *Options) Complete() error {
	return nil
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
