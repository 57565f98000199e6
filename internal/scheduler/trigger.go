// Package scheduler arms agent triggers on shared timers and runs the
// execution pipeline for each firing.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"panwatch/internal/errors"
)

// TriggerKind discriminates the two schedule grammars.
type TriggerKind int

const (
	// TriggerCron is a five-field cron expression.
	TriggerCron TriggerKind = iota
	// TriggerInterval is a fixed repetition period.
	TriggerInterval
)

// TriggerSpec is a parsed schedule expression. Exactly one of the two
// payloads is meaningful, selected by Kind.
type TriggerSpec struct {
	Kind  TriggerKind
	Expr  string        // original cron expression, Kind == TriggerCron
	Every time.Duration // repetition period, Kind == TriggerInterval
}

func (t TriggerSpec) String() string {
	if t.Kind == TriggerInterval {
		return "interval:" + t.Every.String()
	}
	return t.Expr
}

// ParseTrigger parses a schedule expression. Two grammars are accepted:
// a five-field cron expression ("30 15 * * 1-5") or an interval of the
// form "interval:<n><unit>" with unit s, m or h and n a positive integer.
// Only shape is validated here; cron field ranges are checked when the
// trigger is armed.
func ParseTrigger(expr string) (TriggerSpec, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return TriggerSpec{}, errors.NewTriggerError(expr, "empty expression")
	}

	if rest, ok := strings.CutPrefix(trimmed, "interval:"); ok {
		return parseInterval(expr, rest)
	}

	fields := strings.Fields(trimmed)
	if len(fields) != 5 {
		return TriggerSpec{}, errors.NewTriggerError(expr,
			fmt.Sprintf("expected 5 cron fields, got %d", len(fields)))
	}
	return TriggerSpec{Kind: TriggerCron, Expr: strings.Join(fields, " ")}, nil
}

func parseInterval(expr, rest string) (TriggerSpec, error) {
	if rest == "" {
		return TriggerSpec{}, errors.NewTriggerError(expr, "missing interval value")
	}

	unit := rest[len(rest)-1]
	var per time.Duration
	switch unit {
	case 's':
		per = time.Second
	case 'm':
		per = time.Minute
	case 'h':
		per = time.Hour
	default:
		return TriggerSpec{}, errors.NewTriggerError(expr,
			fmt.Sprintf("unknown interval unit %q", string(unit)))
	}

	n, err := strconv.Atoi(rest[:len(rest)-1])
	if err != nil {
		return TriggerSpec{}, errors.NewTriggerError(expr, "interval value is not an integer")
	}
	if n <= 0 {
		return TriggerSpec{}, errors.NewTriggerError(expr, "interval must be positive")
	}

	return TriggerSpec{Kind: TriggerInterval, Every: time.Duration(n) * per}, nil
}
