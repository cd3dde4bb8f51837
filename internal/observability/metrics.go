package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/cory-johannsen/gauntlet/internal/config"
)

// NewMeter returns the meter encounter counters are recorded on. Enabled metrics resolve through the global
// meter provider, so an exporter installed with otel.SetMeterProvider receives them; disabled metrics use a
// no-op meter.
//
// Postcondition: Returns a non-nil meter.
func NewMeter(cfg config.MetricsConfig) metric.Meter {
	if !cfg.Enabled {
		return noop.Meter{}
	}
	return otel.Meter(cfg.MeterName)
}
