package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"panwatch/internal/agent"
	"panwatch/internal/errors"
	"panwatch/internal/logging"
)

// ContextBuilder assembles a fresh execution context for one agent run.
type ContextBuilder interface {
	Build(ctx context.Context, agentName string) (*agent.Context, error)
}

// HistoryStore records run outcomes.
type HistoryStore interface {
	RecordRun(ctx context.Context, outcome agent.Outcome) error
}

// Scheduler arms one timer per registered agent and executes the run
// pipeline on every firing. Registration is an upsert: re-registering an
// agent replaces its timer, so an agent never holds more than one.
type Scheduler struct {
	cron     *gocron.Scheduler
	registry *agent.Registry
	builder  ContextBuilder
	history  HistoryStore
	logger   zerolog.Logger

	inflight sync.WaitGroup

	mu       sync.Mutex
	triggers map[string]TriggerSpec
	stopped  bool
}

// New creates a scheduler over the given agent registry. Timers fire in
// the process-local timezone; cron day and hour fields are interpreted
// against it.
func New(registry *agent.Registry, builder ContextBuilder, history HistoryStore, logger zerolog.Logger) *Scheduler {
	cron := gocron.NewScheduler(time.Local)
	cron.WaitForScheduleAll()
	return &Scheduler{
		cron:     cron,
		registry: registry,
		builder:  builder,
		history:  history,
		logger:   logger,
		triggers: make(map[string]TriggerSpec),
	}
}

// Register arms a timer for the named agent, replacing any existing one.
// The agent must exist in the registry. Cron field ranges are validated
// here, at arming time.
func (s *Scheduler) Register(agentName, trigger string) error {
	if s.registry.Lookup(agentName) == nil {
		return errors.Wrap(errors.ErrUnknownAgent, agentName)
	}

	spec, err := ParseTrigger(trigger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return errors.ErrSchedulerStopped
	}

	// Upsert: drop the previous timer before arming the new one. If the
	// new expression fails arming-time validation, the old timer is put
	// back so a bad re-register never costs a working schedule.
	prev, hadPrev := s.triggers[agentName]
	_ = s.cron.RemoveByTag(agentName)

	job, err := s.arm(agentName, spec)
	if err != nil {
		if hadPrev {
			if _, rearmErr := s.arm(agentName, prev); rearmErr != nil {
				delete(s.triggers, agentName)
				s.logger.Error().Err(rearmErr).Str("agent", agentName).
					Msg("failed to restore previous schedule")
			}
		}
		return errors.NewTriggerError(trigger, err.Error())
	}

	s.triggers[agentName] = spec
	logging.LogSchedule(s.logger, agentName, spec.String(), job.NextRun())
	return nil
}

func (s *Scheduler) arm(agentName string, spec TriggerSpec) (*gocron.Job, error) {
	var def *gocron.Scheduler
	if spec.Kind == TriggerInterval {
		def = s.cron.Every(spec.Every)
	} else {
		def = s.cron.Cron(spec.Expr)
	}
	return def.Tag(agentName).Do(func() {
		s.fire(agentName)
	})
}

// Unregister removes the named agent's timer. Removing an agent that has
// no timer is a no-op.
func (s *Scheduler) Unregister(agentName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.cron.RemoveByTag(agentName)
	delete(s.triggers, agentName)
}

// Registered returns the names of agents holding timers.
func (s *Scheduler) Registered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.triggers))
	for name := range s.triggers {
		names = append(names, name)
	}
	return names
}

// NextRun returns the next firing time of the named agent's timer.
func (s *Scheduler) NextRun(agentName string) (time.Time, error) {
	jobs, err := s.cron.FindJobsByTag(agentName)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, errors.Wrap(errors.ErrUnknownAgent, agentName)
	}
	return jobs[0].NextRun(), nil
}

// Start begins firing timers in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	s.logger.Info().Int("agents", len(s.triggers)).Msg("scheduler started")
}

// Shutdown stops the timers and waits for in-flight runs to finish,
// up to the context deadline.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("scheduler drained")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("shutdown deadline reached with runs in flight")
		return errors.Wrap(errors.ErrTimeout, "scheduler shutdown")
	}
}

// TriggerNow runs the named agent immediately through the same pipeline a
// timer firing uses, and returns the recorded outcome.
func (s *Scheduler) TriggerNow(ctx context.Context, agentName string) (agent.Outcome, error) {
	s.inflight.Add(1)
	defer s.inflight.Done()
	return s.runPipeline(ctx, agentName)
}

// fire is the timer callback. Pipeline errors are already reflected in
// the recorded outcome; here they are only logged.
func (s *Scheduler) fire(agentName string) {
	s.inflight.Add(1)
	defer s.inflight.Done()

	outcome, err := s.runPipeline(context.Background(), agentName)
	if err != nil {
		s.logger.Error().Err(err).Str("agent", agentName).Msg("run failed")
		return
	}
	logging.LogRun(s.logger, agentName, string(outcome.Status), outcome.Duration, nil)
}
