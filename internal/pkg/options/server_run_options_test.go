package options

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/mentatproj/mentat/internal/pkg/server"
)

func TestServerRunOptions_NoWriteDeadlineByDefault(t *testing.T) {
	opts := NewServerRunOptions()

	if opts.WriteTimeout != 0 {
		t.Fatalf("default write timeout = %v, want 0 (disabled)", opts.WriteTimeout)
	}

	cfg := server.NewConfig()
	if err := opts.ApplyTo(cfg); err != nil {
		t.Fatalf("ApplyTo() error: %v", err)
	}
	if cfg.WriteTimeout != 0 {
		t.Fatalf("applied write timeout = %v, want 0", cfg.WriteTimeout)
	}
}

func TestServerRunOptions_TimeoutFlags(t *testing.T) {
	opts := NewServerRunOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)

	args := []string{"--server.read-timeout=10s", "--server.write-timeout=45m"}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	cfg := server.NewConfig()
	if err := opts.ApplyTo(cfg); err != nil {
		t.Fatalf("ApplyTo() error: %v", err)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Fatalf("read timeout = %v, want 10s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 45*time.Minute {
		t.Fatalf("write timeout = %v, want 45m", cfg.WriteTimeout)
	}
}
