package options

import (
	"github.com/spf13/pflag"
)

// StoreOptions configures local persistence: the bolt database holding
// runtime-added MCP servers and the sqlite tool-call audit trail.
type StoreOptions struct {
	// ServerDBPath is the bolt database for runtime server configs.
	// Empty disables persistence.
	ServerDBPath string `json:"server_db_path" mapstructure:"server_db_path"`

	// AuditDBPath is the sqlite database for the tool-call audit trail.
	// Empty disables auditing.
	AuditDBPath string `json:"audit_db_path" mapstructure:"audit_db_path"`
}

// NewStoreOptions creates StoreOptions with defaults.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		ServerDBPath: "data/servers.db",
		AuditDBPath:  "data/audit.db",
	}
}

// Validate checks the options.
func (o *StoreOptions) Validate() []error {
	return nil
}

// AddFlags adds store flags to the given flag set.
func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ServerDBPath, "store.server-db-path", o.ServerDBPath,
		"Bolt database for runtime-added MCP servers. Empty disables persistence.")
	fs.StringVar(&o.AuditDBPath, "store.audit-db-path", o.AuditDBPath,
		"Sqlite database for the tool-call audit trail. Empty disables auditing.")
}
