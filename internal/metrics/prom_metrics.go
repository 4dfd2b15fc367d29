// Package metrics exports the simulated board readings and the device event counts to Prometheus.
package metrics

import (
	"strconv"
	"strings"

	"heating_board/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heating_board"

type PromMetrics struct {
	gauges   map[string]prometheus.Gauge
	wireTemp *prometheus.GaugeVec
	outputs  *prometheus.GaugeVec
	events   *prometheus.CounterVec
	histos   map[string]prometheus.Observer
}

// NewPromMetrics registers the board collectors on reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauges := map[string]prometheus.Gauge{
		"board_temp_celsius":       gauge("board_temp_celsius", "Simulated board temperature."),
		"heatsink_temp_celsius":    gauge("heatsink_temp_celsius", "Simulated heatsink (NTC) temperature."),
		"ambient_temp_celsius":     gauge("ambient_temp_celsius", "Simulated ambient temperature."),
		"wire_target_celsius":      gauge("wire_target_celsius", "Resolved wire target temperature."),
		"cap_voltage_volts":        gauge("cap_voltage_volts", "Capacitor bank voltage."),
		"current_amperes":          gauge("current_amperes", "Load current."),
		"relay_closed":             gauge("relay_closed", "1 when the main relay is reported closed."),
		"device_running":           gauge("device_running", "1 while the device is in the Running state."),
		"session_energy_wh":        gauge("session_energy_wh", "Energy of the live or most recent session."),
		"sessions_total_energy_wh": gauge("sessions_total_energy_wh", "Lifetime session energy."),
		"sessions_total":           gauge("sessions_total", "Lifetime number of sessions."),
	}
	wireTemp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wire_temp_celsius",
		Help:      "Simulated temperature per heating wire.",
	}, []string{"wire"})
	outputs := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "output_energized",
		Help:      "1 when the output channel is energized.",
	}, []string{"wire"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "device_events_total",
		Help:      "Device events appended to the event log, by type.",
	}, []string{"type"})
	fitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_fit_seconds",
		Help:      "Time spent fitting the thermal model.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	collectors := []prometheus.Collector{wireTemp, outputs, events, fitDuration}
	for _, g := range gauges {
		collectors = append(collectors, g)
	}
	reg.MustRegister(collectors...)

	return &PromMetrics{
		gauges:   gauges,
		wireTemp: wireTemp,
		outputs:  outputs,
		events:   events,
		histos: map[string]prometheus.Observer{
			"model_fit_seconds": fitDuration,
		},
	}
}

// ObserveSnapshot copies one monitor snapshot into the gauges.
func (p *PromMetrics) ObserveSnapshot(s models.MonitorSnapshot) {
	p.setGauge("board_temp_celsius", s.Thermal.BoardTempC)
	p.setGauge("heatsink_temp_celsius", s.Thermal.HeatsinkTempC)
	p.setGauge("ambient_temp_celsius", s.Thermal.AmbientC)
	p.setGauge("wire_target_celsius", s.WireTargetC)
	p.setGauge("cap_voltage_volts", s.Electrical.CapVoltageV)
	p.setGauge("current_amperes", s.Electrical.CurrentA)
	p.setGauge("relay_closed", boolToFloat(s.Relay))
	p.setGauge("device_running", boolToFloat(s.State == models.StateRunning))
	p.setGauge("session_energy_wh", s.Session.EnergyWh)
	p.setGauge("sessions_total_energy_wh", s.SessionTotals.TotalEnergyWh)
	p.setGauge("sessions_total", float64(s.SessionTotals.TotalSessions))

	for i, temp := range s.Thermal.WireTempC {
		p.wireTemp.WithLabelValues(strconv.Itoa(i + 1)).Set(temp)
	}
	for _, ch := range s.Outputs {
		p.outputs.WithLabelValues(strconv.Itoa(ch.Index)).Set(boolToFloat(ch.Energized))
	}
}

// CountEvent increments the event counter for typ.
func (p *PromMetrics) CountEvent(typ string) {
	p.events.WithLabelValues(strings.ToUpper(typ)).Inc()
}

// ObserveFit records the duration of one model fit in seconds.
func (p *PromMetrics) ObserveFit(seconds float64) {
	if h, ok := p.histos["model_fit_seconds"]; ok {
		h.Observe(seconds)
	}
}

func (p *PromMetrics) setGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
