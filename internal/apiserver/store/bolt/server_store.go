package bolt

import (
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/pkg/utils/json"
)

// ServerStore implements mcp.ServerStore on BoltDB.
type ServerStore struct {
	db *bolt.DB
}

var _ mcp.ServerStore = (*ServerStore)(nil)

// NewServerStore creates a BoltDB-backed server config store.
func NewServerStore(db *DB) *ServerStore {
	return &ServerStore{db: db.Bolt()}
}

// Save upserts one server configuration keyed by name.
func (s *ServerStore) Save(cfg *mcp.ServerConfig) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServers)
		data, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal server config: %w", err)
		}
		return b.Put([]byte(cfg.Name), data)
	})
}

// Delete removes a server configuration. Deleting an absent name is a
// no-op.
func (s *ServerStore) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServers)
		return b.Delete([]byte(name))
	})
}

// List returns every stored server configuration.
func (s *ServerStore) List() ([]*mcp.ServerConfig, error) {
	var configs []*mcp.ServerConfig
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketServers)
		return b.ForEach(func(k, v []byte) error {
			var cfg mcp.ServerConfig
			if err := json.Unmarshal(v, &cfg); err != nil {
				return fmt.Errorf("failed to unmarshal server config: %w", err)
			}
			configs = append(configs, &cfg)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list server configs: %w", err)
	}
	return configs, nil
}
