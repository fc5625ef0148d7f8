package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// GRPCOptions holds options for the gRPC listener.
type GRPCOptions struct {
	BindAddress string `json:"bind_address" mapstructure:"bind_address"`
	BindPort    int    `json:"bind_port"    mapstructure:"bind_port"`
	MaxMsgSize  int    `json:"max_msg_size" mapstructure:"max_msg_size"`
}

// NewGRPCOptions creates GRPCOptions with defaults.
func NewGRPCOptions() *GRPCOptions {
	return &GRPCOptions{
		BindAddress: "127.0.0.1",
		BindPort:    8321,
		MaxMsgSize:  4 * 1024 * 1024,
	}
}

// Validate checks the options.
func (o *GRPCOptions) Validate() []error {
	var errs []error

	if o.BindPort < 0 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("grpc bind port %d must be between 0 and 65535", o.BindPort))
	}

	return errs
}

// AddFlags adds flags for the gRPC listener to the given flag set.
func (o *GRPCOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "grpc.bind-address", o.BindAddress,
		"The IP address on which to serve the gRPC listener.")
	fs.IntVar(&o.BindPort, "grpc.bind-port", o.BindPort,
		"The port on which to serve gRPC. Set to zero to disable.")
	fs.IntVar(&o.MaxMsgSize, "grpc.max-msg-size", o.MaxMsgSize,
		"gRPC max message size.")
}
