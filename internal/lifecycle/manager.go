package lifecycle

import (
	"context"
	"sync"
	"time"

	"seryvo/internal/general/logger"
	"seryvo/internal/ports"
)

// offerSweepInterval is the countdown tick: expired offers leave the feed
// within one interval of hitting zero, read or no read.
const offerSweepInterval = time.Second

// Manager is the per-driver controller registry. Controllers are created
// lazily on first touch and live for the process lifetime; each one gets its
// own reload and expiry-sweep loops bound to the manager's base context.
type Manager struct {
	backend ports.BookingBackend
	sink    Sink
	logger  *logger.Logger

	baseCtx context.Context

	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewManager builds a registry. ctx bounds the reload loops of every
// controller the manager creates.
func NewManager(ctx context.Context, backend ports.BookingBackend, sink Sink, log *logger.Logger) *Manager {
	return &Manager{
		backend:     backend,
		sink:        sink,
		logger:      log,
		baseCtx:     ctx,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the controller for a driver, creating and starting it if
// needed.
func (m *Manager) Get(driverID string) *Controller {
	m.mu.RLock()
	c, ok := m.controllers[driverID]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[driverID]; ok {
		return c
	}

	c = NewController(driverID, m.backend, m.sink, m.logger)
	m.controllers[driverID] = c
	go c.RunReloadLoop(m.baseCtx)
	go c.RunExpiryLoop(m.baseCtx, offerSweepInterval)
	return c
}

// Peek returns the controller only if it already exists.
func (m *Manager) Peek(driverID string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.controllers[driverID]
	return c, ok
}
