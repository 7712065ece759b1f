package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockMirror is a testify mock of the mirror collaborator.
type mockMirror struct {
	mock.Mock
}

func (m *mockMirror) FetchEvents(ctx context.Context, start, end time.Time) ([]MirrorEvent, error) {
	args := m.Called(ctx, start, end)
	if events, ok := args.Get(0).([]MirrorEvent); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMirror) CreateEvent(ctx context.Context, payload Payload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *mockMirror) UpdateEvent(ctx context.Context, mirrorID string, payload Payload) error {
	args := m.Called(ctx, mirrorID, payload)
	return args.Error(0)
}

func (m *mockMirror) DeleteEvent(ctx context.Context, mirrorID string) error {
	args := m.Called(ctx, mirrorID)
	return args.Error(0)
}

// fakeSource is a simple test source
type fakeSource struct {
	events    []SourceEvent
	fetchFunc func(context.Context, time.Time, time.Time) ([]SourceEvent, error)
}

func (f *fakeSource) Name() string {
	return "fake"
}

func (f *fakeSource) FetchEvents(ctx context.Context, start, end time.Time) ([]SourceEvent, error) {
	if f.fetchFunc != nil {
		return f.fetchFunc(ctx, start, end)
	}
	return f.events, nil
}

func scenarioPlan(t *testing.T) *Plan {
	sources, mirrors := scenario()
	plan, err := BuildPlan(sources, BuildIndex(mirrors), Options{Now: fixedNow})
	require.NoError(t, err)
	return plan
}

func TestApplyPlan_Live(t *testing.T) {
	m := new(mockMirror)
	m.On("CreateEvent", mock.Anything, mock.MatchedBy(func(p Payload) bool { return p.SourceRef == "C" })).Return("m-C", nil)
	m.On("UpdateEvent", mock.Anything, "m-B", mock.MatchedBy(func(p Payload) bool { return p.Title == "Foo Bar" })).Return(nil)
	m.On("DeleteEvent", mock.Anything, "m-D").Return(nil)

	result, err := ApplyPlan(context.Background(), m, scenarioPlan(t), Options{}, nil)
	require.NoError(t, err)

	created, updated, deleted := result.Counts()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{created, updated, deleted})
	assert.Equal(t, 0, result.WouldDelete)
	m.AssertExpectations(t)
}

func TestApplyPlan_DryRun(t *testing.T) {
	m := new(mockMirror)

	result, err := ApplyPlan(context.Background(), m, scenarioPlan(t), Options{DryRun: true}, nil)
	require.NoError(t, err)

	created, updated, deleted := result.Counts()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{created, updated, deleted})
	assert.Equal(t, 0, result.Deleted, "dry-run never increments the real delete counter")
	assert.Equal(t, 1, result.WouldDelete)

	m.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything)
}

func TestApplyPlan_CreateFailureAborts(t *testing.T) {
	m := new(mockMirror)
	m.On("CreateEvent", mock.Anything, mock.Anything).Return("", fmt.Errorf("quota exceeded"))

	result, err := ApplyPlan(context.Background(), m, scenarioPlan(t), Options{}, nil)
	require.Error(t, err)

	var actionErr *ActionError
	require.True(t, errors.As(err, &actionErr))
	assert.Equal(t, ActionCreate, actionErr.Type)
	assert.Equal(t, "C", actionErr.SourceRef)
	assert.Equal(t, 0, result.Created)

	m.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything)
}

func TestApplyPlan_UpdateFailureAborts(t *testing.T) {
	m := new(mockMirror)
	m.On("CreateEvent", mock.Anything, mock.Anything).Return("m-C", nil)
	m.On("UpdateEvent", mock.Anything, "m-B", mock.Anything).Return(fmt.Errorf("backend error"))

	result, err := ApplyPlan(context.Background(), m, scenarioPlan(t), Options{}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	m.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything)
}

func TestApplyPlan_DeleteFailureIsolated(t *testing.T) {
	plan := &Plan{Actions: []Action{
		{Type: ActionDelete, MirrorID: "gone", SourceRef: "x"},
		{Type: ActionDelete, MirrorID: "ok", SourceRef: "y"},
	}}

	m := new(mockMirror)
	m.On("DeleteEvent", mock.Anything, "gone").Return(fmt.Errorf("404 not found"))
	m.On("DeleteEvent", mock.Anything, "ok").Return(nil)

	result, err := ApplyPlan(context.Background(), m, plan, Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.DeleteFailed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "gone")
	m.AssertNumberOfCalls(t, "DeleteEvent", 2)
}

func TestRun_Scenario(t *testing.T) {
	sources, mirrors := scenario()
	src := &fakeSource{events: sources}

	m := new(mockMirror)
	m.On("FetchEvents", mock.Anything, planNow, planNow.AddDate(0, 0, 30)).Return(mirrors, nil)
	m.On("CreateEvent", mock.Anything, mock.Anything).Return("m-C", nil)
	m.On("UpdateEvent", mock.Anything, "m-B", mock.Anything).Return(nil)
	m.On("DeleteEvent", mock.Anything, "m-D").Return(nil)

	report, err := Run(context.Background(), &Spec{
		Source:  src,
		Mirror:  m,
		Options: Options{HorizonDays: 30, Now: fixedNow},
		RunID:   "run-1",
	})
	require.NoError(t, err)

	created, updated, deleted := report.Counts()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{created, updated, deleted})
	assert.Equal(t, "fake", report.Source)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, planNow, report.WindowStart)
	assert.Empty(t, report.Phase)
	m.AssertExpectations(t)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name      string
		spec      func() *Spec
		wantPhase Phase
		wantIs    error
	}{
		{
			name: "Missing source",
			spec: func() *Spec {
				return &Spec{Mirror: new(mockMirror), Options: Options{HorizonDays: 1}}
			},
			wantIs: ErrConfiguration,
		},
		{
			name: "Zero horizon",
			spec: func() *Spec {
				return &Spec{Source: &fakeSource{}, Mirror: new(mockMirror)}
			},
			wantIs: ErrConfiguration,
		},
		{
			name: "Source auth failure",
			spec: func() *Spec {
				src := &fakeSource{fetchFunc: func(context.Context, time.Time, time.Time) ([]SourceEvent, error) {
					return nil, fmt.Errorf("%w: 401", ErrAuthentication)
				}}
				return &Spec{Source: src, Mirror: new(mockMirror), Options: Options{HorizonDays: 1}}
			},
			wantPhase: PhaseFetchSource,
			wantIs:    ErrAuthentication,
		},
		{
			name: "Mirror fetch failure",
			spec: func() *Spec {
				m := new(mockMirror)
				m.On("FetchEvents", mock.Anything, mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection reset"))
				return &Spec{Source: &fakeSource{}, Mirror: m, Options: Options{HorizonDays: 1}}
			},
			wantPhase: PhaseFetchMirror,
			wantIs:    ErrFetch,
		},
		{
			name: "Duplicate refs",
			spec: func() *Spec {
				m := new(mockMirror)
				m.On("FetchEvents", mock.Anything, mock.Anything, mock.Anything).Return([]MirrorEvent{
					{ID: "1", SourceRef: "a"}, {ID: "2", SourceRef: "a"},
				}, nil)
				return &Spec{Source: &fakeSource{}, Mirror: m, Options: Options{HorizonDays: 1, FailOnDuplicateRefs: true}}
			},
			wantPhase: PhasePlan,
			wantIs:    ErrConsistency,
		},
		{
			name: "Create failure",
			spec: func() *Spec {
				m := new(mockMirror)
				m.On("FetchEvents", mock.Anything, mock.Anything, mock.Anything).Return([]MirrorEvent{}, nil)
				m.On("CreateEvent", mock.Anything, mock.Anything).Return("", fmt.Errorf("boom"))
				src := &fakeSource{events: []SourceEvent{event("A", "a", planNow.Add(time.Hour))}}
				return &Spec{Source: src, Mirror: m, Options: Options{HorizonDays: 1, Now: fixedNow}}
			},
			wantPhase: PhaseExecute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Run(context.Background(), tt.spec())
			require.Error(t, err)
			require.NotNil(t, report)
			assert.Equal(t, tt.wantPhase, PhaseOf(err))
			assert.Equal(t, tt.wantPhase, report.Phase)
			assert.NotEmpty(t, report.Error)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestReconcileWithPlan_DoesNotMutate(t *testing.T) {
	sources, mirrors := scenario()
	m := new(mockMirror)
	m.On("FetchEvents", mock.Anything, mock.Anything, mock.Anything).Return(mirrors, nil)

	report, err := ReconcileWithPlan(context.Background(), &Spec{
		Source:  &fakeSource{events: sources},
		Mirror:  m,
		Options: Options{HorizonDays: 7, Now: fixedNow},
	})
	require.NoError(t, err)
	assert.Len(t, report.Plan.Actions, 3)
	assert.Nil(t, report.Result)
	m.AssertNumberOfCalls(t, "FetchEvents", 1)
	m.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}
