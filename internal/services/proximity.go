package services

import (
	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/geo"
)

const DefaultProximityThresholdMeters = 50.0

// ProximityEvaluator decides whether a fix is close enough to the destination.
// It holds no state besides the threshold.
type ProximityEvaluator struct {
	threshold float64
}

// NewProximityEvaluator falls back to DefaultProximityThresholdMeters for a non-positive threshold.
func NewProximityEvaluator(thresholdMeters float64) *ProximityEvaluator {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultProximityThresholdMeters
	}
	return &ProximityEvaluator{threshold: thresholdMeters}
}

func (p *ProximityEvaluator) Threshold() float64 { return p.threshold }

// Evaluate returns the great-circle distance in meters.
func (p *ProximityEvaluator) Evaluate(current domain.Position, dest domain.Destination) float64 {
	return geo.HaversineMeters(current.Coordinates(), dest.Coordinates())
}

// ShouldTrigger is strictly less-than: a fix exactly on the threshold does not fire.
func (p *ProximityEvaluator) ShouldTrigger(distanceMeters float64, alreadyTriggered bool) bool {
	return distanceMeters < p.threshold && !alreadyTriggered
}
