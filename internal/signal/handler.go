// Package signal converts SIGINT/SIGTERM into context cancellation so an
// interrupted run propagates through the engine's cleanup hooks instead of
// killing the process mid-step.
//
// Import rules:
//   - CAN import: std lib only
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler wraps a context and cancels it when an interrupt arrives.
// Interrupts are never absorbed by the engine's error strategies; the
// canceled context surfaces at the next loop boundary and the after
// hooks still run before the error reaches the caller.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler manages the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal
	once        sync.Once
	stopOnce    sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	hist, err := eng.Run(h.Context())
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffer of 1 so signal.Notify never drops the first signal.
		sigChan: make(chan os.Signal, 1),
	}
	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context returns the cancellable context to run the engine with.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes on the first signal.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop detaches the handler and cancels the context. Always call it when
// done to avoid leaking the listener goroutine.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.once.Do(func() {
				h.cancel()
				close(h.interrupted)
			})
			// Keep draining; only the first signal has effect.
		}
	}
}
