package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recalculations counts leaf recalculation runs.
	// Labels: trigger (task, kpi, manual), outcome (updated, unchanged, missing)
	recalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okrs",
		Subsystem: "engine",
		Name:      "recalculations_total",
		Help:      "Key result recalculations by trigger and outcome",
	}, []string{"trigger", "outcome"})

	// cascadedObjectives counts objectives created by generation and cascades.
	// Labels: level (COMPANY, DEPARTMENT, TEAM)
	cascadedObjectives = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okrs",
		Subsystem: "engine",
		Name:      "cascaded_objectives_total",
		Help:      "Objectives created by template generation and cascades",
	}, []string{"level"})

	// cascadeFailures counts cascade transactions that rolled back.
	cascadeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "okrs",
		Subsystem: "engine",
		Name:      "cascade_failures_total",
		Help:      "Cascade transactions aborted",
	}, []string{"level"})
)
