package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"launchhub/pkg/circuitbreaker"
	"launchhub/pkg/mq"
	"launchhub/pkg/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu      sync.Mutex
	events  map[int64]*Event
	sent    []int64
	failed  []int64
	listErr error
}

func newFakeStore(events ...*Event) *fakeStore {
	s := &fakeStore{events: map[int64]*Event{}}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *fakeStore) GetPendingEvents(_ context.Context, limit int) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*Event
	for id := int64(1); id <= int64(len(s.events)) && len(out) < limit; id++ {
		if e, ok := s.events[id]; ok && e.Status == StatusPending {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) GetFailedEvents(_ context.Context, limit int) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Event
	for id := int64(1); id <= int64(len(s.events)) && len(out) < limit; id++ {
		if e, ok := s.events[id]; ok && e.Status == StatusFailed {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) GetEventByID(_ context.Context, id int64) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *fakeStore) MarkAsSent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id].Status = StatusSent
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkAsFailed(_ context.Context, id int64, maxRetries int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.events[id]
	e.RetryCount++
	e.Status, e.NextRetryAt = failureState(e.RetryCount, maxRetries, time.Now())
	s.failed = append(s.failed, id)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []mq.Message
	traceIDs []string
	err      error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, msg mq.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	p.traceIDs = append(p.traceIDs, trace.FromContext(ctx))
	return nil
}

func pendingEvent(id int64, payload string) *Event {
	return &Event{ID: id, EventID: fmt.Sprintf("evt-%d", id), RoutingKey: "progress.step_updated", Payload: []byte(payload), Status: StatusPending}
}

func TestDispatcher_ProcessOnce(t *testing.T) {
	store := newFakeStore(
		pendingEvent(1, `{"trace_id":"abc","project_id":"p1"}`),
		pendingEvent(2, `{"project_id":"p2"}`),
	)
	pub := &fakePublisher{}
	d := NewDispatcher(store, pub, zap.NewNop())

	sent := d.ProcessOnce(context.Background())
	assert.Equal(t, 2, sent)
	assert.Equal(t, []int64{1, 2}, store.sent)
	require.Len(t, pub.messages, 2)
	assert.Equal(t, "evt-1", pub.messages[0].ID)
	assert.Equal(t, "progress.step_updated", pub.messages[0].RoutingKey)
	assert.Equal(t, []string{"abc", ""}, pub.traceIDs)

	assert.Equal(t, 0, d.ProcessOnce(context.Background()))
}

func TestDispatcher_PublishFailureSchedulesRetry(t *testing.T) {
	store := newFakeStore(pendingEvent(1, `{}`))
	pub := &fakePublisher{err: errors.New("channel closed")}
	d := NewDispatcher(store, pub, zap.NewNop()).WithMaxRetries(2)

	assert.Equal(t, 0, d.ProcessOnce(context.Background()))
	assert.Equal(t, StatusPending, store.events[1].Status)
	assert.NotNil(t, store.events[1].NextRetryAt)

	d.ProcessOnce(context.Background())
	assert.Equal(t, StatusFailed, store.events[1].Status)
	assert.Nil(t, store.events[1].NextRetryAt)
}

func TestDispatcher_InvalidPayloadFails(t *testing.T) {
	store := newFakeStore(pendingEvent(1, `not json`))
	pub := &fakePublisher{}
	d := NewDispatcher(store, pub, zap.NewNop()).WithMaxRetries(1)

	d.ProcessOnce(context.Background())
	assert.Empty(t, pub.messages)
	assert.Equal(t, StatusFailed, store.events[1].Status)
}

func TestDispatcher_OpenBreakerDefersBatch(t *testing.T) {
	store := newFakeStore(pendingEvent(1, `{}`), pendingEvent(2, `{}`), pendingEvent(3, `{}`))
	pub := &fakePublisher{err: errors.New("broker down")}
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour})
	d := NewDispatcher(store, pub, zap.NewNop()).WithCircuitBreaker(cb)

	d.ProcessOnce(context.Background())
	assert.Equal(t, circuitbreaker.StateOpen, cb.GetState())
	// Only the first event was attempted; the rest wait for the breaker.
	assert.Equal(t, []int64{1}, store.failed)
	assert.Equal(t, 0, store.events[2].RetryCount)
}

func TestDispatcher_StartStopsOnCancel(t *testing.T) {
	store := newFakeStore(pendingEvent(1, `{}`))
	pub := &fakePublisher{}
	d := NewDispatcher(store, pub, zap.NewNop()).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sent) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestDispatcher_ListErrorIsLogged(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("db down")
	d := NewDispatcher(store, &fakePublisher{}, zap.NewNop())
	assert.Equal(t, 0, d.ProcessOnce(context.Background()))
}

func TestReplayService(t *testing.T) {
	failed := pendingEvent(1, `{"trace_id":"t1"}`)
	failed.Status = StatusFailed
	failed.RetryCount = 5
	other := pendingEvent(2, `{}`)
	other.Status = StatusFailed
	store := newFakeStore(failed, other)
	pub := &fakePublisher{}
	svc := NewReplayService(store, pub, zap.NewNop())

	n, err := svc.ReplayFailedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, StatusSent, store.events[1].Status)
	assert.Equal(t, []string{"t1", ""}, pub.traceIDs)

	err = svc.ReplayEvent(context.Background(), 42)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestReplayService_PublishFailure(t *testing.T) {
	ev := pendingEvent(1, `{}`)
	ev.Status = StatusFailed
	store := newFakeStore(ev)
	svc := NewReplayService(store, &fakePublisher{err: errors.New("nope")}, zap.NewNop())

	err := svc.ReplayEvent(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish")
	assert.Equal(t, StatusFailed, store.events[1].Status)
}

func TestFailureState(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	status, next := failureState(2, 5, now)
	assert.Equal(t, StatusPending, status)
	require.NotNil(t, next)
	assert.Equal(t, now.Add(10*time.Second), *next)

	status, next = failureState(5, 5, now)
	assert.Equal(t, StatusFailed, status)
	assert.Nil(t, next)
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent("", "project", "p1", "project.created", map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, StatusPending, e.Status)
	assert.JSONEq(t, `{"name":"x"}`, string(e.Payload))

	e, err = NewEvent("fixed", "project", "p1", "project.created", nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", e.EventID)

	_, err = NewEvent("", "project", "p1", "x", make(chan int))
	assert.Error(t, err)
}
