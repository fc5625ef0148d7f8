package apiserver

import (
	"github.com/mentatproj/mentat/internal/apiserver/config"
)

// Run launches the apiserver and blocks until shutdown.
func Run(cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run()
}
