package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kinky/internal/logger"
)

const DefaultTimeout = 10 * time.Second

// Closer is anything the manager can stop.
type Closer interface {
	Close() error
}

// CloserFunc adapts a function to Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

type entry struct {
	name   string
	closer Closer
}

// Manager stops registered components in reverse registration order, once,
// giving each a bounded time to finish.
type Manager struct {
	components []entry
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	err        error
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(parent context.Context, log logger.Logger, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(parent)

	return &Manager{
		logger:  log,
		timeout: timeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Manager) Register(name string, component Closer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, entry{name: name, closer: component})
}

// Watch shuts down when the parent context ends, for example on a signal
// delivered through signal.NotifyContext. onShutdown runs afterwards.
func (m *Manager) Watch(onShutdown func()) {
	go func() {
		select {
		case <-m.ctx.Done():
		case <-m.done:
			return
		}
		select {
		case <-m.done:
			return
		default:
		}
		m.logger.Info("ShutdownManager", "shutdown requested", map[string]interface{}{
			"cause": context.Cause(m.ctx).Error(),
		})
		if err := m.Shutdown(); err != nil {
			m.logger.Error("ShutdownManager", err, map[string]interface{}{
				"cause": context.Cause(m.ctx).Error(),
			})
		}
		if onShutdown != nil {
			onShutdown()
		}
	}()
}

// Shutdown closes every component and returns their joined errors. Later
// calls return the first result.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return m.err
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		result := make(chan error, 1)
		go func() {
			result <- component.closer.Close()
		}()

		select {
		case err := <-result:
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", component.name, err))
			}
		case <-time.After(m.timeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component": component.name,
			})
			errs = append(errs, fmt.Errorf("%s: shutdown timed out after %s", component.name, m.timeout))
		}
	}

	m.err = errors.Join(errs...)
	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
	return m.err
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
