package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panwatch/internal/config"
)

// stubChannel records deliveries and can fail a fixed number of times.
type stubChannel struct {
	name      string
	enabled   bool
	ttl       time.Duration
	failures  int
	delivered []Notification
}

func (s *stubChannel) Name() string            { return s.name }
func (s *stubChannel) IsEnabled() bool         { return s.enabled }
func (s *stubChannel) DedupeTTL() time.Duration { return s.ttl }

func (s *stubChannel) Send(ctx context.Context, n Notification) error {
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("stub send failure")
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func newTestNotifier(cfg *config.NotificationConfig, channels ...NotificationChannel) *MultiNotifier {
	mn := NewMultiNotifier(cfg, zerolog.Nop())
	for _, ch := range channels {
		mn.AddChannel(ch)
	}
	return mn
}

func baseConfig() *config.NotificationConfig {
	return &config.NotificationConfig{
		Enabled: true,
		Retry:   config.RetryConfig{Attempts: 3, BackoffBaseMS: 1},
	}
}

func TestSend_DeliversToEnabledChannels(t *testing.T) {
	ch := &stubChannel{name: "a", enabled: true}
	off := &stubChannel{name: "b", enabled: false}
	mn := newTestNotifier(baseConfig(), ch, off)

	err := mn.Send(context.Background(), Notification{
		Type: NotificationReport, Title: "t", Message: "m",
	})
	require.NoError(t, err)
	assert.Len(t, ch.delivered, 1)
	assert.Empty(t, off.delivered)
	assert.False(t, ch.delivered[0].Timestamp.IsZero())
}

func TestSend_RetriesTransientFailures(t *testing.T) {
	ch := &stubChannel{name: "flaky", enabled: true, failures: 2}
	mn := newTestNotifier(baseConfig(), ch)

	err := mn.Send(context.Background(), Notification{Type: NotificationInfo, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Len(t, ch.delivered, 1, "third attempt succeeds")
}

func TestSend_ExhaustedRetriesReportError(t *testing.T) {
	ch := &stubChannel{name: "dead", enabled: true, failures: 10}
	mn := newTestNotifier(baseConfig(), ch)

	err := mn.Send(context.Background(), Notification{Type: NotificationInfo, Title: "t", Message: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dead")
}

func TestSend_QuietHoursSuppressReports(t *testing.T) {
	cfg := baseConfig()
	cfg.QuietHours = config.QuietHoursConfig{Start: "22:00", End: "07:00"}

	ch := &stubChannel{name: "a", enabled: true}
	mn := newTestNotifier(cfg, ch)
	mn.now = func() time.Time {
		return time.Date(2024, 6, 4, 23, 30, 0, 0, time.Local)
	}

	err := mn.Send(context.Background(), Notification{Type: NotificationReport, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Empty(t, ch.delivered, "report suppressed inside the window")

	// The window wraps midnight; early morning is still quiet.
	mn.now = func() time.Time {
		return time.Date(2024, 6, 5, 6, 30, 0, 0, time.Local)
	}
	require.NoError(t, mn.Send(context.Background(), Notification{Type: NotificationReport, Title: "t2", Message: "m"}))
	assert.Empty(t, ch.delivered)

	mn.now = func() time.Time {
		return time.Date(2024, 6, 5, 9, 0, 0, 0, time.Local)
	}
	require.NoError(t, mn.Send(context.Background(), Notification{Type: NotificationReport, Title: "t3", Message: "m"}))
	assert.Len(t, ch.delivered, 1, "delivered once the window ends")
}

func TestSend_ErrorsBypassQuietHours(t *testing.T) {
	cfg := baseConfig()
	cfg.QuietHours = config.QuietHoursConfig{Start: "22:00", End: "07:00"}

	ch := &stubChannel{name: "a", enabled: true}
	mn := newTestNotifier(cfg, ch)
	mn.now = func() time.Time {
		return time.Date(2024, 6, 4, 23, 30, 0, 0, time.Local)
	}

	require.NoError(t, mn.SendError(context.Background(), fmt.Errorf("boom"), "collector"))
	assert.Len(t, ch.delivered, 1)
}

func TestSend_DedupeWithinTTL(t *testing.T) {
	ch := &stubChannel{name: "a", enabled: true, ttl: 10 * time.Minute}
	mn := newTestNotifier(baseConfig(), ch)

	base := time.Date(2024, 6, 4, 10, 0, 0, 0, time.Local)
	mn.now = func() time.Time { return base }

	n := Notification{Type: NotificationAlert, Title: "mover", Message: "600519 +3.2%"}
	require.NoError(t, mn.Send(context.Background(), n))
	require.NoError(t, mn.Send(context.Background(), n))
	assert.Len(t, ch.delivered, 1, "identical alert deduplicated")

	// Different content is a different notification.
	other := Notification{Type: NotificationAlert, Title: "mover", Message: "600519 +4.0%"}
	require.NoError(t, mn.Send(context.Background(), other))
	assert.Len(t, ch.delivered, 2)

	// After the TTL the original goes through again.
	mn.now = func() time.Time { return base.Add(11 * time.Minute) }
	require.NoError(t, mn.Send(context.Background(), n))
	assert.Len(t, ch.delivered, 3)
}

func TestSend_DedupeIsPerChannel(t *testing.T) {
	withTTL := &stubChannel{name: "ttl", enabled: true, ttl: 10 * time.Minute}
	noTTL := &stubChannel{name: "nottl", enabled: true}
	mn := newTestNotifier(baseConfig(), withTTL, noTTL)

	n := Notification{Type: NotificationAlert, Title: "t", Message: "m"}
	require.NoError(t, mn.Send(context.Background(), n))
	require.NoError(t, mn.Send(context.Background(), n))

	assert.Len(t, withTTL.delivered, 1)
	assert.Len(t, noTTL.delivered, 2, "zero TTL disables dedupe")
}

func TestNewMultiNotifier_BuildsConfiguredChannels(t *testing.T) {
	cfg := baseConfig()
	cfg.Webhook = config.WebhookConfig{Enabled: true, URL: "http://example.invalid/hook"}
	cfg.Telegram = config.TelegramConfig{Enabled: false}

	mn := NewMultiNotifier(cfg, zerolog.Nop())
	require.Len(t, mn.channels, 1)
	assert.Equal(t, "webhook", mn.channels[0].Name())
}
