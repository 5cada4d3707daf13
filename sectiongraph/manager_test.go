package sectiongraph

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeService is a controllable Service for manager tests.
type fakeService struct {
	mu         sync.Mutex
	built      map[string]bool
	buildCount atomic.Int64
	buildErr   error
	buildDelay time.Duration
	buildEmpty bool
}

func newFakeService() *fakeService {
	return &fakeService{built: make(map[string]bool)}
}

func (f *fakeService) Exists(_ context.Context, groupID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.built[groupID]
}

func (f *fakeService) Build(ctx context.Context, groupID string) (bool, error) {
	f.buildCount.Add(1)
	if f.buildDelay > 0 {
		select {
		case <-time.After(f.buildDelay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if f.buildErr != nil {
		return false, f.buildErr
	}
	if f.buildEmpty {
		return false, nil
	}
	f.mu.Lock()
	f.built[groupID] = true
	f.mu.Unlock()
	return true, nil
}

func (f *fakeService) Search(_ context.Context, _ string, groupID string, _ int) ([]SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if groupID != "" && !f.built[groupID] {
		return nil, nil
	}
	return []SearchHit{{ID: "hit-" + groupID, GroupID: groupID, Score: 0.9}}, nil
}

func TestManager_EnsureReadyBuildsOnce(t *testing.T) {
	svc := newFakeService()
	m := NewManager(svc, 0)
	ctx := context.Background()

	m.EnsureReady(ctx, "group-1")
	if m.Status("group-1") != StatusReady {
		t.Fatalf("status = %v, want ready", m.Status("group-1"))
	}

	m.EnsureReady(ctx, "group-1")
	m.EnsureReady(ctx, "group-1")
	if got := svc.buildCount.Load(); got != 1 {
		t.Errorf("build count = %d, want 1", got)
	}
}

func TestManager_BuildFailureLeavesAbsent(t *testing.T) {
	svc := newFakeService()
	svc.buildErr = context.DeadlineExceeded
	m := NewManager(svc, 0)
	ctx := context.Background()

	m.EnsureReady(ctx, "group-1")
	if m.Status("group-1") != StatusAbsent {
		t.Fatalf("status = %v, want absent after failure", m.Status("group-1"))
	}

	// A later query retries the build.
	svc.buildErr = nil
	m.EnsureReady(ctx, "group-1")
	if m.Status("group-1") != StatusReady {
		t.Errorf("status = %v, want ready after retry", m.Status("group-1"))
	}
	if got := svc.buildCount.Load(); got != 2 {
		t.Errorf("build count = %d, want 2", got)
	}
}

func TestManager_EmptyBuildLeavesAbsent(t *testing.T) {
	svc := newFakeService()
	svc.buildEmpty = true
	m := NewManager(svc, 0)

	m.EnsureReady(context.Background(), "group-1")
	if m.Status("group-1") != StatusAbsent {
		t.Errorf("status = %v, want absent for empty group", m.Status("group-1"))
	}
}

func TestManager_ConcurrentFirstQueriesSingleBuild(t *testing.T) {
	svc := newFakeService()
	svc.buildDelay = 50 * time.Millisecond
	m := NewManager(svc, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.EnsureReady(ctx, "group-1")
		}()
	}
	wg.Wait()

	if got := svc.buildCount.Load(); got != 1 {
		t.Errorf("build count = %d, want 1", got)
	}
}

func TestManager_BuildSurvivesCallerDeadline(t *testing.T) {
	svc := newFakeService()
	svc.buildDelay = 50 * time.Millisecond
	m := NewManager(svc, 0)

	// The caller's deadline expires long before the build completes.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	start := time.Now()
	m.EnsureReady(ctx, "group-1")
	if elapsed := time.Since(start); elapsed >= svc.buildDelay {
		t.Errorf("EnsureReady blocked %v, want return at caller deadline", elapsed)
	}

	// The detached build finishes on its own budget.
	deadline := time.Now().Add(time.Second)
	for m.Status("group-1") != StatusReady {
		if time.Now().After(deadline) {
			t.Fatalf("status = %v, want ready after background build", m.Status("group-1"))
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := svc.buildCount.Load(); got != 1 {
		t.Errorf("build count = %d, want 1", got)
	}
}

func TestManager_ExistingGraphSkipsBuild(t *testing.T) {
	svc := newFakeService()
	svc.built["group-1"] = true
	m := NewManager(svc, 0)

	m.EnsureReady(context.Background(), "group-1")
	if m.Status("group-1") != StatusReady {
		t.Errorf("status = %v, want ready", m.Status("group-1"))
	}
	if got := svc.buildCount.Load(); got != 0 {
		t.Errorf("build count = %d, want 0", got)
	}
}

func TestManager_SearchTriggersBuild(t *testing.T) {
	svc := newFakeService()
	m := NewManager(svc, 0)

	hits, err := m.Search(context.Background(), "query", "group-1", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if got := svc.buildCount.Load(); got != 1 {
		t.Errorf("build count = %d, want 1", got)
	}
}

func TestManager_SearchAllGroupsSkipsBuild(t *testing.T) {
	svc := newFakeService()
	m := NewManager(svc, 0)

	if _, err := m.Search(context.Background(), "query", "", 5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := svc.buildCount.Load(); got != 0 {
		t.Errorf("build count = %d, want 0 for unscoped search", got)
	}
}
