// Package metrics exposes flight telemetry as prometheus collectors.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gunass/terminal-space-program/pkg/event"
)

// FlightMetrics holds the collectors for one or more flights.
type FlightMetrics struct {
	registry *prometheus.Registry

	altitude     prometheus.Gauge
	downrange    prometheus.Gauge
	velocity     *prometheus.GaugeVec
	acceleration *prometheus.GaugeVec
	fuel         prometheus.Gauge
	ticks        prometheus.Counter
	liftoffs     prometheus.Counter
	outcomes     *prometheus.CounterVec
}

// New creates FlightMetrics registered on a private registry.
func New() *FlightMetrics {
	m := &FlightMetrics{
		registry: prometheus.NewRegistry(),
		altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rocket_altitude",
			Help: "Current rocket height above the pad (field rows)",
		}),
		downrange: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rocket_downrange",
			Help: "Current horizontal distance from the pad (field columns)",
		}),
		velocity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rocket_velocity",
			Help: "Current velocity per axis",
		}, []string{"axis"}),
		acceleration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rocket_acceleration",
			Help: "Acceleration applied on the last tick per axis",
		}, []string{"axis"}),
		fuel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rocket_fuel",
			Help: "Fuel remaining",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocket_ticks_total",
			Help: "Simulation ticks executed",
		}),
		liftoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocket_liftoffs_total",
			Help: "Flights that left the pad",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rocket_flights_terminated_total",
			Help: "Finished flights by termination reason",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.altitude, m.downrange, m.velocity, m.acceleration,
		m.fuel, m.ticks, m.liftoffs, m.outcomes,
	)
	return m
}

// Registry returns the registry holding the flight collectors.
func (m *FlightMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Attach subscribes the collectors to flight events on bus. The returned
// function detaches them again.
func (m *FlightMetrics) Attach(bus *event.Bus) (detach func()) {
	subs := []*event.Subscription{
		bus.Subscribe(event.TickCompleted, m.onTick),
		bus.Subscribe(event.Liftoff, func(event.Event) { m.liftoffs.Inc() }),
		bus.Subscribe(event.FlightTerminated, m.onTerminated),
	}
	return func() {
		for _, s := range subs {
			s.Cancel()
		}
	}
}

func (m *FlightMetrics) onTick(e event.Event) {
	fe, ok := e.(*event.FlightEvent)
	if !ok {
		return
	}
	st := fe.State
	m.ticks.Inc()
	m.altitude.Set(st.Position.Y)
	m.downrange.Set(st.Position.X)
	m.velocity.WithLabelValues("x").Set(st.Velocity.X)
	m.velocity.WithLabelValues("y").Set(st.Velocity.Y)
	m.acceleration.WithLabelValues("x").Set(st.Acceleration.X)
	m.acceleration.WithLabelValues("y").Set(st.Acceleration.Y)
	m.fuel.Set(st.Fuel)
}

func (m *FlightMetrics) onTerminated(e event.Event) {
	if fe, ok := e.(*event.FlightEvent); ok {
		m.outcomes.WithLabelValues(fe.Reason.String()).Inc()
	}
}

// WriteTextfile dumps the current values in the text exposition format.
func (m *FlightMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
