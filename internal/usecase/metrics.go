package usecase

import "time"

// NotificationMetrics receives pipeline counters. The Prometheus implementation
// lives in internal/observability.
type NotificationMetrics interface {
	ObserveSource(label string, matches, rejected int, err error)
	ObserveDelivery(outcome DeliveryOutcome)
	ObserveSweep(result SweepResult, err error, elapsed time.Duration)
}

type DeliveryOutcome string

const (
	DeliveryOutcomeSent    DeliveryOutcome = "sent"
	DeliveryOutcomeFailed  DeliveryOutcome = "failed"
	DeliveryOutcomeSkipped DeliveryOutcome = "skipped"
)

type noopMetrics struct{}

func (noopMetrics) ObserveSource(string, int, int, error)           {}
func (noopMetrics) ObserveDelivery(DeliveryOutcome)                 {}
func (noopMetrics) ObserveSweep(SweepResult, error, time.Duration) {}

func NewNoopMetrics() NotificationMetrics {
	return noopMetrics{}
}
