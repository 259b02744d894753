// Package lifecycle sequences subsystem startup and shutdown for the server
// and pipeline processes.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Coordinator tracks subsystem startup and drives graceful shutdown. The
// zero value is not usable; create one with New.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	ready    atomic.Bool
}

// New creates a Coordinator whose context stays live until Shutdown.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context returns the run context, cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine and counts it toward readiness.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown runs fn in its own goroutine. fn should wait on Context before
// cleaning up, and must return for Shutdown to complete.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// Ready reports whether every startup hook has finished.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until every startup hook has finished, then marks
// the coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the run context and waits up to timeout for shutdown
// hooks to drain.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown hooks still running after %v", timeout)
	}
}
