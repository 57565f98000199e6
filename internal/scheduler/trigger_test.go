package scheduler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panwatch/internal/errors"
)

// Property: every positive interval with a known unit parses to the
// matching duration.
func TestProperty_IntervalParsesToMatchingDuration(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	units := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
	}

	properties.Property("interval round-trips", prop.ForAll(
		func(n int, unit string) bool {
			spec, err := ParseTrigger(fmt.Sprintf("interval:%d%s", n, unit))
			if err != nil {
				return false
			}
			return spec.Kind == TriggerInterval && spec.Every == time.Duration(n)*units[unit]
		},
		gen.IntRange(1, 100000),
		gen.OneConstOf("s", "m", "h"),
	))

	properties.Property("zero and negative intervals are rejected", prop.ForAll(
		func(n int, unit string) bool {
			_, err := ParseTrigger(fmt.Sprintf("interval:%d%s", n, unit))
			return errors.Is(err, errors.ErrInvalidTriggerFormat)
		},
		gen.IntRange(-100000, 0),
		gen.OneConstOf("s", "m", "h"),
	))

	properties.TestingRun(t)
}

// Property: whitespace-separated expressions parse as cron exactly when
// they carry five fields.
func TestProperty_CronFieldCountDecidesAcceptance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("five fields parse, other counts fail", prop.ForAll(
		func(fieldCount int) bool {
			fields := make([]string, fieldCount)
			for i := range fields {
				fields[i] = "*"
			}
			spec, err := ParseTrigger(strings.Join(fields, " "))
			if fieldCount == 5 {
				return err == nil && spec.Kind == TriggerCron
			}
			return errors.Is(err, errors.ErrInvalidTriggerFormat)
		},
		gen.IntRange(1, 9),
	))

	properties.TestingRun(t)
}

func TestParseTrigger_Cron(t *testing.T) {
	spec, err := ParseTrigger("30 15 * * 1-5")
	require.NoError(t, err)
	assert.Equal(t, TriggerCron, spec.Kind)
	assert.Equal(t, "30 15 * * 1-5", spec.Expr)
}

func TestParseTrigger_CronNormalizesWhitespace(t *testing.T) {
	spec, err := ParseTrigger("  30  15 * *  1-5 ")
	require.NoError(t, err)
	assert.Equal(t, "30 15 * * 1-5", spec.Expr)
}

func TestParseTrigger_CronShapeOnly(t *testing.T) {
	// Field values are not validated at parse time; a nonsense value in
	// five fields passes the shape check and fails when armed.
	spec, err := ParseTrigger("99 99 * * xyz")
	require.NoError(t, err)
	assert.Equal(t, TriggerCron, spec.Kind)
}

func TestParseTrigger_SixFieldCronRejected(t *testing.T) {
	_, err := ParseTrigger("0 */2 9-18 * * 1-5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidTriggerFormat))

	var terr *errors.TriggerError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "0 */2 9-18 * * 1-5", terr.Expr)
}

func TestParseTrigger_Interval(t *testing.T) {
	spec, err := ParseTrigger("interval:30m")
	require.NoError(t, err)
	assert.Equal(t, TriggerInterval, spec.Kind)
	assert.Equal(t, 30*time.Minute, spec.Every)
}

func TestParseTrigger_InvalidInputs(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"interval:",
		"interval:5",
		"interval:5x",
		"interval:0m",
		"interval:-1h",
		"interval:1.5h",
		"interval:m",
	}
	for _, expr := range cases {
		_, err := ParseTrigger(expr)
		assert.Truef(t, errors.Is(err, errors.ErrInvalidTriggerFormat),
			"expected trigger error for %q, got %v", expr, err)
	}
}
