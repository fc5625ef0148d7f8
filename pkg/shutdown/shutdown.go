// Package shutdown coordinates graceful process termination: managers
// listen for a shutdown trigger (e.g. POSIX signals) and callbacks run
// cleanup in registration order.
package shutdown

import "sync"

// ShutdownCallback runs cleanup when shutdown starts.
type ShutdownCallback interface {
	OnShutdown(shutdownManager string) error
}

// Func adapts a plain function to ShutdownCallback.
type Func func(string) error

// OnShutdown implements ShutdownCallback.
func (f Func) OnShutdown(shutdownManager string) error {
	return f(shutdownManager)
}

// ShutdownManager watches for a shutdown trigger and reports it.
type ShutdownManager interface {
	GetName() string
	Start(gs GSInterface) error
	ShutdownStart() error
	ShutdownFinish() error
}

// ErrorHandler receives errors raised during shutdown.
type ErrorHandler interface {
	OnError(err error)
}

// ErrorFunc adapts a plain function to ErrorHandler.
type ErrorFunc func(err error)

// OnError implements ErrorHandler.
func (f ErrorFunc) OnError(err error) {
	f(err)
}

// GSInterface is the surface managers use to report a trigger.
type GSInterface interface {
	StartShutdown(sm ShutdownManager)
	ReportError(err error)
	AddShutdownCallback(shutdownCallback ShutdownCallback)
}

// GracefulShutdown ties managers and callbacks together.
type GracefulShutdown struct {
	callbacks    []ShutdownCallback
	managers     []ShutdownManager
	errorHandler ErrorHandler
}

// New creates an empty GracefulShutdown.
func New() *GracefulShutdown {
	return &GracefulShutdown{
		callbacks: make([]ShutdownCallback, 0, 8),
		managers:  make([]ShutdownManager, 0, 2),
	}
}

// Start starts all added managers, which begin listening for triggers.
func (gs *GracefulShutdown) Start() error {
	for _, manager := range gs.managers {
		if err := manager.Start(gs); err != nil {
			return err
		}
	}
	return nil
}

// AddShutdownManager adds a manager.
func (gs *GracefulShutdown) AddShutdownManager(manager ShutdownManager) {
	gs.managers = append(gs.managers, manager)
}

// AddShutdownCallback adds a callback to run on shutdown.
func (gs *GracefulShutdown) AddShutdownCallback(shutdownCallback ShutdownCallback) {
	gs.callbacks = append(gs.callbacks, shutdownCallback)
}

// SetErrorHandler sets the handler invoked for callback/manager errors.
func (gs *GracefulShutdown) SetErrorHandler(errorHandler ErrorHandler) {
	gs.errorHandler = errorHandler
}

// StartShutdown runs ShutdownStart, all callbacks (concurrently), and
// ShutdownFinish for the triggering manager.
func (gs *GracefulShutdown) StartShutdown(sm ShutdownManager) {
	gs.ReportError(sm.ShutdownStart())

	var wg sync.WaitGroup
	for _, shutdownCallback := range gs.callbacks {
		wg.Add(1)
		go func(shutdownCallback ShutdownCallback) {
			defer wg.Done()
			gs.ReportError(shutdownCallback.OnShutdown(sm.GetName()))
		}(shutdownCallback)
	}
	wg.Wait()

	gs.ReportError(sm.ShutdownFinish())
}

// ReportError forwards a non-nil error to the error handler.
func (gs *GracefulShutdown) ReportError(err error) {
	if err != nil && gs.errorHandler != nil {
		gs.errorHandler.OnError(err)
	}
}
