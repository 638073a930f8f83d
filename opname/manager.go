package opname

import (
	"context"
	"sync"

	"apotek/advisor"
	"apotek/catalog"
	"apotek/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager keeps the open sessions.
type Manager struct {
	store   *catalog.Store
	advisor advisor.Advisor
	metrics *metrics.Metrics
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store *catalog.Store, adv advisor.Advisor, m *metrics.Metrics, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if adv == nil {
		adv = advisor.Disabled{}
	}
	return &Manager{
		store:    store,
		advisor:  adv,
		metrics:  m,
		log:      log.Named("opname"),
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Open() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:       uuid.NewString(),
		OpenedAt: m.store.Now(),
		store:    m.store,
		advisor:  m.advisor,
		metrics:  m.metrics,
		log:      m.log,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.Info("stock count session opened", zap.String("session", s.ID))
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close ends a session and returns its final summary. Analyses still in
// flight are cancelled and do not appear in the summary.
func (m *Manager) Close(id string) (Summary, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return Summary{}, ErrSessionNotFound
	}

	s.close()
	sum := s.Summary()
	m.log.Info("stock count session closed",
		zap.String("session", id), zap.Int("items", sum.TotalItems),
		zap.Int("discrepancies", sum.TotalDiscrepancies))
	return sum, nil
}

// Shutdown closes every open session and waits for their analyses to
// stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		open = append(open, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.close()
		s.Wait()
	}
}
