package combat

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/cory-johannsen/gauntlet/internal/game/combat"

// telemetry holds the encounter counters. All instruments are no-ops when no meter is configured.
type telemetry struct {
	attr        metric.MeasurementOption
	attacks     metric.Int64Counter
	resolved    metric.Int64Counter
	takeovers   metric.Int64Counter
	promotions  metric.Int64Counter
	demotions   metric.Int64Counter
	obstructed  metric.Int64Counter
	transitions metric.Int64Counter
}

func newTelemetry(m metric.Meter, encounterID string) (*telemetry, error) {
	if m == nil {
		m = noop.NewMeterProvider().Meter(instrumentationName)
	}
	t := &telemetry{attr: metric.WithAttributes(attribute.String("encounter", encounterID))}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&t.attacks, "combat.attacks.started", "Attacks committed after passing the admission gate"},
		{&t.resolved, "combat.attacks.resolved", "Attacks resolved by signal or timeout"},
		{&t.takeovers, "combat.zone.takeovers", "Zones forcibly taken from another combatant"},
		{&t.promotions, "combat.roster.promotions", "Combatants promoted to active"},
		{&t.demotions, "combat.roster.demotions", "Combatants demoted to passive"},
		{&t.obstructed, "combat.zone.obstructed_probes", "Obstruction probes that found a blocked zone"},
		{&t.transitions, "combat.state.transitions", "Combat state transitions"},
	}
	for _, c := range counters {
		counter, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}
	return t, nil
}

func (t *telemetry) add(c metric.Int64Counter, opts ...metric.AddOption) {
	c.Add(context.Background(), 1, append(opts, t.attr)...)
}

func (t *telemetry) attackStarted(mode AttackMode) {
	t.add(t.attacks, metric.WithAttributes(attribute.String("mode", mode.String())))
}

func (t *telemetry) attackResolved(timedOut bool) {
	t.add(t.resolved, metric.WithAttributes(attribute.Bool("timeout", timedOut)))
}

func (t *telemetry) takeover() { t.add(t.takeovers) }

func (t *telemetry) promotion() { t.add(t.promotions) }

func (t *telemetry) demotion() { t.add(t.demotions) }

func (t *telemetry) obstructedProbe() { t.add(t.obstructed) }

func (t *telemetry) transition(s State) {
	t.add(t.transitions, metric.WithAttributes(attribute.String("to", s.String())))
}
