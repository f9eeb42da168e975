package studio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"decal-transfer-studio/internal/gateway"
)

// genai pulls in opencensus, whose view worker starts in init and never exits.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, inv gateway.Invoker) (*Store, *clock) {
	t.Helper()
	c := &clock{now: fixedNow}
	st := New(Options{Invoker: inv, Now: c.Now})
	return NewStore(st, time.Hour), c
}

func TestStoreKeysByChatAndUser(t *testing.T) {
	s, _ := newTestStore(t, &fakeInvoker{respond: defaultResponder})

	a := s.Get(1, 10)
	assert.Same(t, a, s.Get(1, 10))
	assert.NotSame(t, a, s.Get(1, 11))
	assert.NotSame(t, a, s.Get(2, 10))
	assert.Equal(t, 3, s.Len())
}

func TestStoreReset(t *testing.T) {
	s, _ := newTestStore(t, &fakeInvoker{respond: defaultResponder})

	sess := s.Get(1, 1)
	require.NoError(t, sess.SelectHelmet1(context.Background(), helmet1Photo))
	require.Equal(t, StatusExtracted, sess.Snapshot().Helmet1Status)

	assert.Same(t, sess, s.Reset(1, 1))
	assert.Equal(t, StatusIdle, sess.Snapshot().Helmet1Status)
}

func TestStoreSweepDropsIdleSessions(t *testing.T) {
	s, c := newTestStore(t, &fakeInvoker{respond: defaultResponder})

	s.Get(1, 1)
	c.Advance(40 * time.Minute)
	s.Get(2, 2)
	c.Advance(30 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	// a fresh Get after sweeping starts a new session
	assert.Equal(t, StatusIdle, s.Get(1, 1).Snapshot().Helmet1Status)
	assert.Equal(t, 2, s.Len())
}

func TestStoreSweepKeepsBusySessions(t *testing.T) {
	release := make(chan struct{})
	inv := &fakeInvoker{respond: func(action gateway.Action, payload any) (string, error) {
		<-release
		return defaultResponder(action, payload)
	}}
	s, c := newTestStore(t, inv)

	sess := s.Get(1, 1)
	done := make(chan error, 1)
	go func() { done <- sess.SelectHelmet1(context.Background(), helmet1Photo) }()
	require.Eventually(t, sess.Busy, time.Second, time.Millisecond)

	c.Advance(2 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, s.Sweep())
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	s, _ := newTestStore(t, &fakeInvoker{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
