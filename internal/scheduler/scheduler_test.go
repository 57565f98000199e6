package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panwatch/internal/agent"
	"panwatch/internal/collector"
	"panwatch/internal/errors"
	"panwatch/internal/market"
	"panwatch/internal/notify"
)

// stubAgent runs a configurable body.
type stubAgent struct {
	agent.BaseAgent
	body func(ctx context.Context, rc *agent.Context) (string, error)
	runs int
}

func newStubAgent(name string, body func(ctx context.Context, rc *agent.Context) (string, error)) *stubAgent {
	return &stubAgent{BaseAgent: agent.NewBaseAgent(name, name), body: body}
}

func (s *stubAgent) Run(ctx context.Context, rc *agent.Context) (string, error) {
	s.runs++
	if s.body == nil {
		return "ok", nil
	}
	return s.body(ctx, rc)
}

// stubBuilder returns a fixed context or error.
type stubBuilder struct {
	watchlist []market.WatchItem
	err       error
}

func (b *stubBuilder) Build(ctx context.Context, agentName string) (*agent.Context, error) {
	if b.err != nil {
		return nil, errors.NewContextBuildError(agentName, b.err)
	}
	return &agent.Context{
		Watchlist:  b.watchlist,
		Notifier:   notify.NewNoOpNotifier(),
		Collectors: collector.NewGroupWith(),
		Logger:     zerolog.Nop(),
	}, nil
}

// stubHistory records outcomes and can simulate store failure.
type stubHistory struct {
	mu       sync.Mutex
	outcomes []agent.Outcome
	err      error
}

func (h *stubHistory) RecordRun(ctx context.Context, outcome agent.Outcome) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.outcomes = append(h.outcomes, outcome)
	return nil
}

func (h *stubHistory) recorded() []agent.Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]agent.Outcome(nil), h.outcomes...)
}

func oneItem() []market.WatchItem {
	return []market.WatchItem{{Symbol: "600519", Market: market.CN}}
}

func newTestScheduler(agents []agent.Agent, builder ContextBuilder, history HistoryStore) *Scheduler {
	return New(agent.NewRegistry(agents...), builder, history, zerolog.Nop())
}

func TestTriggerNow_RunsAndRecordsSuccess(t *testing.T) {
	a := newStubAgent("report", func(ctx context.Context, rc *agent.Context) (string, error) {
		return "report body", nil
	})
	history := &stubHistory{}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{watchlist: oneItem()}, history)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, agent.RunSuccess, outcome.Status)
	assert.Equal(t, "report body", outcome.Content)
	assert.NotEmpty(t, outcome.RunID)
	assert.False(t, outcome.StartedAt.IsZero())

	recorded := history.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, outcome.RunID, recorded[0].RunID)
}

func TestTriggerNow_UnknownAgent(t *testing.T) {
	history := &stubHistory{}
	s := newTestScheduler(nil, &stubBuilder{watchlist: oneItem()}, history)

	_, err := s.TriggerNow(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownAgent))
	assert.Empty(t, history.recorded(), "no outcome for an unknown agent")
}

func TestTriggerNow_ContextBuildFailureRecorded(t *testing.T) {
	a := newStubAgent("report", nil)
	history := &stubHistory{}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{err: fmt.Errorf("db locked")}, history)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.Error(t, err)
	assert.Equal(t, agent.RunFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "db locked")
	assert.Equal(t, 0, a.runs, "agent body never entered")

	recorded := history.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, agent.RunFailed, recorded[0].Status)
}

func TestTriggerNow_EmptyWatchlistIsNoOpSuccess(t *testing.T) {
	a := newStubAgent("report", nil)
	history := &stubHistory{}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{}, history)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, agent.RunSuccess, outcome.Status)
	assert.Contains(t, outcome.Content, "empty")
	assert.Equal(t, 0, a.runs, "agent body skipped for empty watchlist")
	assert.Len(t, history.recorded(), 1)
}

func TestTriggerNow_AgentErrorContained(t *testing.T) {
	a := newStubAgent("report", func(ctx context.Context, rc *agent.Context) (string, error) {
		return "", fmt.Errorf("feed unreachable")
	})
	history := &stubHistory{}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{watchlist: oneItem()}, history)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.Error(t, err)
	assert.Equal(t, agent.RunFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "feed unreachable")

	var aerr *errors.AgentError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "report", aerr.AgentName)
}

func TestTriggerNow_PanicContained(t *testing.T) {
	a := newStubAgent("report", func(ctx context.Context, rc *agent.Context) (string, error) {
		panic("nil deref in agent body")
	})
	history := &stubHistory{}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{watchlist: oneItem()}, history)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.Error(t, err)
	assert.Equal(t, agent.RunFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "panic")
}

func TestTriggerNow_FailureDoesNotPoisonLaterRuns(t *testing.T) {
	calls := 0
	a := newStubAgent("report", func(ctx context.Context, rc *agent.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("transient")
		}
		return "recovered", nil
	})
	history := &stubHistory{}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{watchlist: oneItem()}, history)

	_, err := s.TriggerNow(context.Background(), "report")
	require.Error(t, err)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, "recovered", outcome.Content)

	recorded := history.recorded()
	require.Len(t, recorded, 2)
	assert.Equal(t, agent.RunFailed, recorded[0].Status)
	assert.Equal(t, agent.RunSuccess, recorded[1].Status)
}

func TestTriggerNow_HistoryFailureDoesNotChangeResult(t *testing.T) {
	a := newStubAgent("report", nil)
	history := &stubHistory{err: fmt.Errorf("disk full")}
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{watchlist: oneItem()}, history)

	outcome, err := s.TriggerNow(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, agent.RunSuccess, outcome.Status)
}

func TestRegister_UpsertKeepsSingleTimer(t *testing.T) {
	a := newStubAgent("report", nil)
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{}, &stubHistory{})

	require.NoError(t, s.Register("report", "30 15 * * 1-5"))
	require.NoError(t, s.Register("report", "interval:10m"))

	assert.Equal(t, 1, s.cron.Len(), "re-registration replaces the timer")
	assert.Equal(t, []string{"report"}, s.Registered())
}

func TestRegister_BadReplacementKeepsOldTimer(t *testing.T) {
	a := newStubAgent("report", nil)
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{}, &stubHistory{})

	require.NoError(t, s.Register("report", "30 15 * * 1-5"))
	before, err := s.NextRun("report")
	require.NoError(t, err)

	// "99 99 * * *" passes the shape check but fails range validation
	// when the timer is armed. The working schedule must survive.
	err = s.Register("report", "99 99 * * *")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidTriggerFormat))

	assert.Equal(t, []string{"report"}, s.Registered())
	assert.Equal(t, 1, s.cron.Len())
	after, err := s.NextRun("report")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegister_UnknownAgent(t *testing.T) {
	s := newTestScheduler(nil, &stubBuilder{}, &stubHistory{})
	err := s.Register("ghost", "30 15 * * 1-5")
	assert.True(t, errors.Is(err, errors.ErrUnknownAgent))
}

func TestRegister_InvalidTrigger(t *testing.T) {
	a := newStubAgent("report", nil)
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{}, &stubHistory{})

	err := s.Register("report", "0 */2 9-18 * * 1-5")
	assert.True(t, errors.Is(err, errors.ErrInvalidTriggerFormat))
	assert.Empty(t, s.Registered())
}

func TestUnregister(t *testing.T) {
	a := newStubAgent("report", nil)
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{}, &stubHistory{})

	require.NoError(t, s.Register("report", "interval:5m"))
	s.Unregister("report")
	assert.Empty(t, s.Registered())
	assert.Equal(t, 0, s.cron.Len())

	// Unregistering an absent agent is a no-op.
	s.Unregister("report")
}

func TestShutdown_AfterStop_RejectsRegistration(t *testing.T) {
	a := newStubAgent("report", nil)
	s := newTestScheduler([]agent.Agent{a}, &stubBuilder{}, &stubHistory{})

	require.NoError(t, s.Shutdown(context.Background()))
	err := s.Register("report", "interval:5m")
	assert.True(t, errors.Is(err, errors.ErrSchedulerStopped))
}
