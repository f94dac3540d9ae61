package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/colgraph/colgraph/internal/eventbus"
	"github.com/colgraph/colgraph/internal/events"
)

func TestMetrics_Attach(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	reg := prometheus.NewRegistry()
	m := New(reg)
	detach := m.Attach()

	ctx := context.Background()
	eventbus.Publish(ctx, events.ActionBooked{Kind: "actions.count", Columns: nil})
	eventbus.Publish(ctx, events.ActionBooked{Kind: "actions.sum", Columns: []string{"x"}})
	eventbus.Publish(ctx, events.ActionDone{Kind: "actions.count"})
	eventbus.Publish(ctx, events.ScanFinish{Entries: 100, Slots: 4, Actions: 2, Duration: 5 * time.Millisecond})
	eventbus.Publish(ctx, events.ScanFinish{Entries: 100, Slots: 4, Actions: 1, Duration: time.Millisecond, Err: errors.New("boom")})

	require.Equal(t, float64(2), testutil.ToFloat64(m.ActionsBooked))
	require.Equal(t, float64(1), testutil.ToFloat64(m.ActionsCompleted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.ScansTotal.WithLabelValues("ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.ScansTotal.WithLabelValues("error")))
	// The failed scan must not count its entries as processed.
	require.Equal(t, float64(100), testutil.ToFloat64(m.EntriesProcessed))

	detach()
	eventbus.Publish(ctx, events.ActionDone{Kind: "actions.count"})
	require.Equal(t, float64(1), testutil.ToFloat64(m.ActionsCompleted), "detached collectors must not move")
}

func TestMetrics_NoBusInstalled(t *testing.T) {
	eventbus.Use(nil)
	m := New(prometheus.NewRegistry())
	detach := m.Attach()
	detach()
	require.Equal(t, float64(0), testutil.ToFloat64(m.ActionsBooked))
}
