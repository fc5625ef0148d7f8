// Package posixsignal provides a shutdown manager triggered by POSIX
// signals (SIGINT/SIGTERM by default).
package posixsignal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mentatproj/mentat/pkg/shutdown"
)

// Name is the manager name used in callbacks.
const Name = "PosixSignalManager"

// PosixSignalManager implements shutdown.ShutdownManager.
type PosixSignalManager struct {
	signals []os.Signal
}

// NewPosixSignalManager creates a manager for the given signals,
// defaulting to SIGINT and SIGTERM.
func NewPosixSignalManager(sig ...os.Signal) *PosixSignalManager {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return &PosixSignalManager{signals: sig}
}

// GetName returns the manager name.
func (psm *PosixSignalManager) GetName() string {
	return Name
}

// Start begins listening for the configured signals.
func (psm *PosixSignalManager) Start(gs shutdown.GSInterface) error {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, psm.signals...)
		<-c

		gs.StartShutdown(psm)
	}()
	return nil
}

// ShutdownStart does nothing.
func (psm *PosixSignalManager) ShutdownStart() error {
	return nil
}

// ShutdownFinish exits the process.
func (psm *PosixSignalManager) ShutdownFinish() error {
	os.Exit(0)
	return nil
}
