// Package notify provides notification functionality for agent reports.
package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"panwatch/internal/config"
	"panwatch/internal/logging"
	"panwatch/pkg/utils"
)

// Notifier defines the interface for sending notifications. Agents hold a
// Notifier handle in their execution context; delivery policy (retries,
// quiet hours, dedupe) lives entirely on this side of the boundary.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	SendReport(ctx context.Context, agentName, title, content string) error
	SendError(ctx context.Context, err error, errContext string) error
}

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
	// DedupeTTL returns how long an identical message is suppressed on
	// this channel; zero disables deduplication.
	DedupeTTL() time.Duration
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationReport NotificationType = "report"
	NotificationAlert  NotificationType = "alert"
	NotificationError  NotificationType = "error"
	NotificationInfo   NotificationType = "info"
)

// MultiNotifier fans a notification out to all enabled channels, applying
// quiet hours, per-channel dedupe and retry with exponential backoff.
type MultiNotifier struct {
	channels   []NotificationChannel
	quietStart string
	quietEnd   string
	retry      utils.RetryConfig
	logger     zerolog.Logger
	now        func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time // channel+digest -> last delivery
}

// NewMultiNotifier creates a MultiNotifier with the given configuration.
func NewMultiNotifier(cfg *config.NotificationConfig, logger zerolog.Logger) *MultiNotifier {
	mn := &MultiNotifier{
		quietStart: cfg.QuietHours.Start,
		quietEnd:   cfg.QuietHours.End,
		retry: utils.RetryConfig{
			MaxAttempts:   cfg.Retry.Attempts,
			InitialDelay:  cfg.Retry.BackoffBase(),
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
		},
		logger: logger,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
	if mn.retry.MaxAttempts <= 0 {
		mn.retry.MaxAttempts = 1
	}

	// Add enabled channels
	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookNotifier(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramNotifier(cfg.Telegram))
	}

	return mn
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// inQuietHours reports whether t falls inside the configured quiet window.
// A window crossing midnight (e.g. 23:00 to 07:00) is handled by OR-ing the
// two day halves.
func (mn *MultiNotifier) inQuietHours(t time.Time) bool {
	if mn.quietStart == "" || mn.quietEnd == "" {
		return false
	}
	start, err := time.Parse("15:04", mn.quietStart)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", mn.quietEnd)
	if err != nil {
		return false
	}

	cur := t.Hour()*60 + t.Minute()
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()

	if s <= e {
		return cur >= s && cur <= e
	}
	return cur >= s || cur <= e
}

// digest returns a stable fingerprint for dedupe purposes.
func digest(n Notification) string {
	h := sha256.Sum256([]byte(n.Title + "\x00" + n.Message))
	return hex.EncodeToString(h[:8])
}

// shouldDeliver checks and updates the per-channel dedupe state.
func (mn *MultiNotifier) shouldDeliver(ch NotificationChannel, n Notification) bool {
	ttl := ch.DedupeTTL()
	if ttl <= 0 {
		return true
	}

	key := ch.Name() + ":" + digest(n)
	now := mn.now()

	mn.mu.Lock()
	defer mn.mu.Unlock()
	if last, ok := mn.seen[key]; ok && now.Sub(last) < ttl {
		return false
	}
	mn.seen[key] = now
	return true
}

// Send sends a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = mn.now()
	}

	// Errors bypass quiet hours; everything else waits for daylight.
	if n.Type != NotificationError && mn.inQuietHours(mn.now()) {
		mn.logger.Debug().Str("title", n.Title).Msg("Notification suppressed by quiet hours")
		return nil
	}

	mn.mu.Lock()
	channels := make([]NotificationChannel, len(mn.channels))
	copy(channels, mn.channels)
	mn.mu.Unlock()

	var errs []string
	for _, ch := range channels {
		if !ch.IsEnabled() {
			continue
		}
		if !mn.shouldDeliver(ch, n) {
			mn.logger.Debug().Str("channel", ch.Name()).Msg("Notification deduplicated")
			continue
		}

		attempts := 0
		err := utils.Retry(ctx, mn.retry, func() error {
			attempts++
			return ch.Send(ctx, n)
		})
		logging.LogNotification(mn.logger, ch.Name(), attempts, err)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendReport sends an agent analysis report.
func (mn *MultiNotifier) SendReport(ctx context.Context, agentName, title, content string) error {
	return mn.Send(ctx, Notification{
		Type:    NotificationReport,
		Title:   title,
		Message: content,
	})
}

// SendError sends an error notification.
func (mn *MultiNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return mn.Send(ctx, Notification{
		Type:    NotificationError,
		Title:   "❌ Error Occurred",
		Message: fmt.Sprintf("Context: %s\nError: %v", errContext, err),
	})
}

// NoOpNotifier is a notifier that does nothing (for disabled notifications).
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send does nothing.
func (n *NoOpNotifier) Send(ctx context.Context, notif Notification) error {
	return nil
}

// SendReport does nothing.
func (n *NoOpNotifier) SendReport(ctx context.Context, agentName, title, content string) error {
	return nil
}

// SendError does nothing.
func (n *NoOpNotifier) SendError(ctx context.Context, err error, context string) error {
	return nil
}
