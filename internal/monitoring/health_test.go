package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvaluateAggregatesStatus(t *testing.T) {
	up := NewCheck("up", func(context.Context) ProbeResult { return ProbeResult{Status: StatusUp} })
	degraded := NewCheck("slow", func(context.Context) ProbeResult { return ProbeResult{Status: StatusDegraded} })
	down := NewCheck("broken", func(context.Context) ProbeResult { return ProbeResult{Status: StatusDown} })

	report := NewHealthManager(up, degraded).Evaluate(context.Background())
	require.True(t, report.Ready)
	require.Equal(t, StatusDegraded, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "slow", report.Checks[1].Component)

	report = NewHealthManager(down, degraded).Evaluate(context.Background())
	require.False(t, report.Ready)
	require.Equal(t, StatusDown, report.Status)
}

func TestEvaluateRecoversPanics(t *testing.T) {
	boom := NewCheck("boom", func(context.Context) ProbeResult { panic("probe exploded") })
	empty := NewCheck("empty", func(context.Context) ProbeResult { return ProbeResult{} })

	report := NewHealthManager(boom, empty, Check{}).Evaluate(context.Background())
	require.False(t, report.Ready)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "boom", report.Checks[0].Component)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
	require.Equal(t, StatusDown, report.Checks[1].Status)
}

func TestNilProbeReportsDown(t *testing.T) {
	report := NewHealthManager(NewCheck("nil", nil)).Evaluate(context.Background())
	require.Equal(t, StatusDown, report.Checks[0].Status)
	require.Equal(t, "probe not implemented", report.Checks[0].Details)
}

func TestResultFromError(t *testing.T) {
	require.Equal(t, StatusUp, ResultFromError(nil, time.Millisecond).Status)
	require.Equal(t, StatusDegraded, ResultFromError(context.DeadlineExceeded, 0).Status)

	res := ResultFromError(errors.New("refused"), -time.Second)
	require.Equal(t, StatusDown, res.Status)
	require.Equal(t, "refused", res.Details)
	require.Zero(t, res.Duration)
}
