package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"panwatch/internal/agent"
	"panwatch/internal/errors"
	"panwatch/internal/logging"
)

// runPipeline executes one run of the named agent: build a fresh context,
// run the body with panic containment, and record the outcome. Every
// failure past the unknown-agent check yields a recorded failed outcome;
// nothing an agent does can take the scheduler down with it.
func (s *Scheduler) runPipeline(ctx context.Context, agentName string) (agent.Outcome, error) {
	a := s.registry.Lookup(agentName)
	if a == nil {
		return agent.Outcome{}, errors.Wrap(errors.ErrUnknownAgent, agentName)
	}

	outcome := agent.Outcome{
		RunID:     uuid.NewString(),
		AgentName: agentName,
		StartedAt: time.Now(),
	}
	logger := logging.WithRunID(logging.WithAgent(s.logger, agentName), outcome.RunID)

	rc, err := s.builder.Build(ctx, agentName)
	if err != nil {
		outcome.Status = agent.RunFailed
		outcome.ErrorMessage = err.Error()
		outcome.Duration = time.Since(outcome.StartedAt)
		s.record(ctx, logger, outcome)
		return outcome, err
	}

	if len(rc.Watchlist) == 0 {
		outcome.Status = agent.RunSuccess
		outcome.Content = "watchlist is empty, nothing to do"
		outcome.Duration = time.Since(outcome.StartedAt)
		s.record(ctx, logger, outcome)
		return outcome, nil
	}

	content, runErr := runBody(ctx, a, rc)
	outcome.Duration = time.Since(outcome.StartedAt)
	if runErr != nil {
		outcome.Status = agent.RunFailed
		outcome.ErrorMessage = runErr.Error()
		s.record(ctx, logger, outcome)
		return outcome, runErr
	}

	outcome.Status = agent.RunSuccess
	outcome.Content = content
	s.record(ctx, logger, outcome)
	return outcome, nil
}

// runBody invokes the agent with panic recovery so a defective agent body
// is reported as a failed run rather than a crashed process.
func runBody(ctx context.Context, a agent.Agent, rc *agent.Context) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewAgentError(a.Name(), "run", fmt.Errorf("panic: %v", r))
		}
	}()

	content, err = a.Run(ctx, rc)
	if err != nil {
		return "", errors.NewAgentError(a.Name(), "run", err)
	}
	return content, nil
}

// record persists the outcome. History failures never alter the run
// result; they are logged and dropped.
func (s *Scheduler) record(ctx context.Context, logger zerolog.Logger, outcome agent.Outcome) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordRun(ctx, outcome); err != nil {
		logger.Error().Err(err).Msg("failed to record run outcome")
	}
}
