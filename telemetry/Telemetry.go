package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metric exporters
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ShutdownFunc flushes and stops the metrics pipeline
type ShutdownFunc func(context.Context) error

// Init installs a global meter provider exporting through exporter.
// With ExporterNone, or an empty exporter, the global no-op provider is
// kept and the returned ShutdownFunc does nothing.
func Init(exporter string, interval time.Duration) (ShutdownFunc, error) {
	switch exporter {
	case "", ExporterNone:
		return func(context.Context) error { return nil }, nil

	case ExporterStdout:
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		if interval <= 0 {
			interval = time.Minute
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp,
				sdkmetric.WithInterval(interval))),
		)
		otel.SetMeterProvider(mp)
		return mp.Shutdown, nil
	}

	return nil, fmt.Errorf("init: unknown metrics exporter %q", exporter)
}
