package sectiongraph

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status is the per-group graph lifecycle state.
type Status int

const (
	StatusAbsent Status = iota
	StatusBuilding
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusBuilding:
		return "building"
	case StatusReady:
		return "ready"
	default:
		return "absent"
	}
}

// DefaultBuildTimeout bounds a single on-demand graph build.
const DefaultBuildTimeout = 180 * time.Second

// Manager memoizes graph builds per document group. The first query against
// a new group pays the build latency; later queries hit the ready fast path.
// At most one build runs per group; callers that find a build in flight
// proceed with whatever partial data exists instead of waiting.
type Manager struct {
	service      Service
	buildTimeout time.Duration

	mu     sync.Mutex
	groups map[string]*groupState
}

type groupState struct {
	buildMu sync.Mutex // held for the duration of a build
	status  Status
}

// NewManager creates a Manager over the given service.
func NewManager(service Service, buildTimeout time.Duration) *Manager {
	if buildTimeout <= 0 {
		buildTimeout = DefaultBuildTimeout
	}
	return &Manager{
		service:      service,
		buildTimeout: buildTimeout,
		groups:       make(map[string]*groupState),
	}
}

func (m *Manager) state(groupID string) *groupState {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs, ok := m.groups[groupID]
	if !ok {
		gs = &groupState{}
		m.groups[groupID] = gs
	}
	return gs
}

// Status returns the current lifecycle state for a group.
func (m *Manager) Status(groupID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gs, ok := m.groups[groupID]; ok {
		return gs.status
	}
	return StatusAbsent
}

func (m *Manager) setStatus(gs *groupState, status Status) {
	m.mu.Lock()
	gs.status = status
	m.mu.Unlock()
}

// EnsureReady makes sure the group's graph is built if possible. A build
// failure or timeout leaves the state absent so a later query can retry;
// the current query proceeds with whatever exists. Never returns an error:
// graph availability is best effort by contract.
func (m *Manager) EnsureReady(ctx context.Context, groupID string) {
	if groupID == "" {
		return
	}

	gs := m.state(groupID)

	m.mu.Lock()
	status := gs.status
	m.mu.Unlock()
	if status == StatusReady {
		return
	}

	// A build in flight for this group means another query is already
	// paying the cost. Proceed with partial data rather than piling up.
	if !gs.buildMu.TryLock() {
		return
	}

	m.mu.Lock()
	status = gs.status
	m.mu.Unlock()
	if status == StatusReady {
		gs.buildMu.Unlock()
		return
	}

	if m.service.Exists(ctx, groupID) {
		m.setStatus(gs, StatusReady)
		gs.buildMu.Unlock()
		return
	}

	m.setStatus(gs, StatusBuilding)

	// The build runs on its own budget, detached from the caller: a query
	// whose channel deadline expires moves on with partial data while the
	// build keeps going and serves the next query.
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer gs.buildMu.Unlock()

		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.buildTimeout)
		defer cancel()

		start := time.Now()
		ok, err := m.service.Build(buildCtx, groupID)
		if err != nil {
			slog.Warn("section graph build failed",
				"group", groupID,
				"duration", time.Since(start),
				"error", err)
			m.setStatus(gs, StatusAbsent)
			return
		}
		if !ok {
			// Built but empty: nothing to memoize, leave absent so new
			// sections trigger a rebuild later.
			m.setStatus(gs, StatusAbsent)
			return
		}

		slog.Info("section graph built",
			"group", groupID,
			"duration", time.Since(start))
		m.setStatus(gs, StatusReady)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Search ensures the group's graph is ready, then queries it. An empty
// groupID searches all built graphs without triggering builds.
func (m *Manager) Search(ctx context.Context, query string, groupID string, topK int) ([]SearchHit, error) {
	if groupID != "" {
		m.EnsureReady(ctx, groupID)
	}
	return m.service.Search(ctx, query, groupID, topK)
}
