package session

import (
	"github.com/nstehr/neuroclick/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "neuroclick",
		Name:      "ticks_total",
		Help:      "Automatic ticks performed",
	})

	// Labels: action, applied (true when the action was affordable)
	ruleFiringsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neuroclick",
		Subsystem: "rules",
		Name:      "firings_total",
		Help:      "Rules whose condition held during a pass",
	}, []string{"action", "applied"})

	// Labels: action (click, train, upgrade, boost), applied
	manualActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neuroclick",
		Name:      "manual_actions_total",
		Help:      "Actions triggered directly by the player",
	}, []string{"action", "applied"})

	// Labels: status (ok, error)
	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neuroclick",
		Subsystem: "storage",
		Name:      "saves_total",
		Help:      "Snapshot writes by outcome",
	}, []string{"status"})

	clicksGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neuroclick",
		Name:      "clicks",
		Help:      "Current click balance",
	})
	dataPointsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neuroclick",
		Name:      "data_points",
		Help:      "Current data point balance",
	})
	efficiencyGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neuroclick",
		Name:      "efficiency",
		Help:      "Current efficiency multiplier",
	})
	intervalGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neuroclick",
		Name:      "tick_interval_milliseconds",
		Help:      "Current automatic tick interval",
	})
)

func observeState(v model.View) {
	clicksGauge.Set(float64(v.Clicks))
	dataPointsGauge.Set(float64(v.DataPoints))
	efficiencyGauge.Set(v.Efficiency)
	intervalGauge.Set(float64(v.AutoClickRate))
}
