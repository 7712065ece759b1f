package mirror

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"calendar-mirror/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	events []reconcile.SourceEvent
	calls  atomic.Int32
	block  chan struct{}
	err    error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchEvents(ctx context.Context, start, end time.Time) ([]reconcile.SourceEvent, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	return s.events, s.err
}

// memoryMirror is an in-memory mirror calendar.
type memoryMirror struct {
	mu     sync.Mutex
	events map[string]reconcile.MirrorEvent
	next   int
}

func newMemoryMirror() *memoryMirror {
	return &memoryMirror{events: make(map[string]reconcile.MirrorEvent)}
}

func (m *memoryMirror) FetchEvents(ctx context.Context, start, end time.Time) ([]reconcile.MirrorEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reconcile.MirrorEvent
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}

func (m *memoryMirror) CreateEvent(ctx context.Context, p reconcile.Payload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := "m" + string(rune('0'+m.next))
	m.events[id] = reconcile.MirrorEvent{ID: id, SourceRef: p.SourceRef, Title: p.Title, Location: p.Location, Description: p.Description, Start: p.Start, End: p.End}
	return id, nil
}

func (m *memoryMirror) UpdateEvent(ctx context.Context, id string, p reconcile.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[id] = reconcile.MirrorEvent{ID: id, SourceRef: p.SourceRef, Title: p.Title, Location: p.Location, Description: p.Description, Start: p.Start, End: p.End}
	return nil
}

func (m *memoryMirror) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

type recordingHook struct {
	mu      sync.Mutex
	before  []string
	reports []*reconcile.Report
	errs    []error
}

func (h *recordingHook) BeforeRun(ctx context.Context, runID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before = append(h.before, runID)
}

func (h *recordingHook) AfterRun(ctx context.Context, report *reconcile.Report, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports = append(h.reports, report)
	h.errs = append(h.errs, err)
}

func sourceEvents() []reconcile.SourceEvent {
	start := testNow.Add(24 * time.Hour)
	return []reconcile.SourceEvent{
		{ID: "A", Title: "Standup", Start: start, End: start.Add(time.Hour)},
		{ID: "B", Title: "Review", Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)},
	}
}

func newTestService(src reconcile.Source, m reconcile.Mirror) *Service {
	svc := NewService(Config{HorizonDays: 7, Timezone: "Europe/Paris", Source: "stub"}, func(context.Context) (reconcile.Source, reconcile.Mirror, error) {
		return src, m, nil
	}, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestService_Sync(t *testing.T) {
	m := newMemoryMirror()
	svc := newTestService(&stubSource{events: sourceEvents()}, m)
	hook := &recordingHook{}
	svc.AddHooks(hook)

	report, err := svc.Sync(context.Background(), Overrides{})
	require.NoError(t, err)

	created, updated, deleted := report.Counts()
	assert.Equal(t, [3]int{2, 0, 0}, [3]int{created, updated, deleted})
	assert.Len(t, m.events, 2)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.IsZero())
	assert.Same(t, report, svc.Last())

	require.Len(t, hook.before, 1)
	assert.Equal(t, report.RunID, hook.before[0])
	require.Len(t, hook.reports, 1)
	assert.Same(t, report, hook.reports[0])
	assert.NoError(t, hook.errs[0])

	// Second pass converges.
	report, err = svc.Sync(context.Background(), Overrides{})
	require.NoError(t, err)
	created, updated, deleted = report.Counts()
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{created, updated, deleted})
	assert.Equal(t, 2, report.Plan.Summary.Unchanged)
}

func TestService_SyncDryRunOverride(t *testing.T) {
	m := newMemoryMirror()
	svc := newTestService(&stubSource{events: sourceEvents()}, m)

	dry := true
	report, err := svc.Sync(context.Background(), Overrides{DryRun: &dry, HorizonDays: 3})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, testNow.AddDate(0, 0, 3), report.WindowEnd)
	assert.Empty(t, m.events)
	assert.Equal(t, 2, report.Result.Created)
}

func TestService_FactoryFailure(t *testing.T) {
	svc := NewService(Config{HorizonDays: 7, Source: "exchange"}, func(context.Context) (reconcile.Source, reconcile.Mirror, error) {
		return nil, nil, reconcile.ErrAuthentication
	}, nil)
	hook := &recordingHook{}
	svc.AddHooks(hook)

	report, err := svc.Sync(context.Background(), Overrides{})
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrAuthentication)
	require.NotNil(t, report)
	assert.Equal(t, "exchange", report.Source)
	assert.NotEmpty(t, report.Error)
	assert.Equal(t, reconcile.PhasePrepare, report.Phase)
	assert.Equal(t, reconcile.PhasePrepare, reconcile.PhaseOf(err))

	require.Len(t, hook.errs, 1)
	assert.Error(t, hook.errs[0])
}

func TestService_SourceFailureReportsPhase(t *testing.T) {
	svc := newTestService(&stubSource{err: errors.New("timeout")}, newMemoryMirror())

	report, err := svc.Sync(context.Background(), Overrides{})
	require.Error(t, err)
	assert.Equal(t, reconcile.PhaseFetchSource, report.Phase)
	assert.Same(t, report, svc.Last())
}

func TestService_ConcurrentTriggersShareOnePass(t *testing.T) {
	src := &stubSource{events: sourceEvents(), block: make(chan struct{})}
	svc := newTestService(src, newMemoryMirror())

	var wg sync.WaitGroup
	reports := make([]*reconcile.Report, 2)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], _ = svc.Sync(context.Background(), Overrides{})
		}(i)
	}

	require.Eventually(t, svc.Running, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	assert.False(t, svc.Running())
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Same(t, reports[0], reports[1])
}
