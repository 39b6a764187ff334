package animation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nixta/mapanimations/internal/animation"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	active     metric.Int64ObservableGauge
	registered metric.Int64Counter
	completed  metric.Int64Counter
	cancelled  metric.Int64Counter
	ticks      metric.Int64Counter
}

func newMetrics(m metric.Meter, s *Scheduler) (*metrics, error) {
	var (
		mt  metrics
		err error
	)

	mt.active, err = m.Int64ObservableGauge(
		"animation.jobs.active",
		metric.WithDescription("Current number of active animation jobs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active jobs gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.active, int64(s.ActiveJobs()))
			return nil
		},
		mt.active,
	)
	if err != nil {
		return nil, fmt.Errorf("registering active jobs callback: %w", err)
	}

	mt.registered, err = m.Int64Counter(
		"animation.jobs.registered",
		metric.WithDescription("Total animation jobs registered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registered counter: %w", err)
	}

	mt.completed, err = m.Int64Counter(
		"animation.jobs.completed",
		metric.WithDescription("Total animation jobs that ran to completion"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completed counter: %w", err)
	}

	mt.cancelled, err = m.Int64Counter(
		"animation.jobs.cancelled",
		metric.WithDescription("Total animation jobs removed by cancel, reset or force stop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cancelled counter: %w", err)
	}

	mt.ticks, err = m.Int64Counter(
		"animation.ticks",
		metric.WithDescription("Total scheduler frames processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	return &mt, nil
}
