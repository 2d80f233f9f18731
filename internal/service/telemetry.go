package service

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one telemetry record kept in the in-process log.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type TelemetryStats struct {
	Emitted     int `json:"emitted"`
	Dropped     int `json:"dropped"`
	Subscribers int `json:"subscribers"`
}

// Telemetry keeps a probabilistically sampled in-process event list and
// fans events out to subscribers. A panicking subscriber is recovered and
// dropped at the emission boundary; it never reaches the caller.
type Telemetry struct {
	samplingRate float64
	sample       func() float64
	events       []Event
	subscribers  []func(Event)
	dropped      int
	logger       *zap.Logger
}

// NewTelemetry creates a telemetry log sampling at rate in [0,1].
func NewTelemetry(samplingRate float64, logger *zap.Logger) *Telemetry {
	if samplingRate < 0 {
		samplingRate = 0
	}
	if samplingRate > 1 {
		samplingRate = 1
	}
	return &Telemetry{
		samplingRate: samplingRate,
		sample:       rand.Float64,
		logger:       logger,
	}
}

// SetSampleFunc replaces the sampling source. Tests use this to make
// emission deterministic.
func (t *Telemetry) SetSampleFunc(fn func() float64) {
	t.sample = fn
}

// Emit records the event unless sampling drops it, then notifies
// subscribers. Returns whether the event was kept.
func (t *Telemetry) Emit(name string, fields map[string]any, now time.Time) bool {
	if t.sample() > t.samplingRate {
		t.dropped++
		return false
	}
	ev := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Fields:    fields,
		Timestamp: now,
	}
	t.events = append(t.events, ev)
	for _, fn := range t.subscribers {
		t.notify(fn, ev)
	}
	return true
}

func (t *Telemetry) notify(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("telemetry subscriber panicked",
				zap.String("event", ev.Name),
				zap.Any("panic", r))
		}
	}()
	fn(ev)
}

func (t *Telemetry) Subscribe(fn func(Event)) {
	t.subscribers = append(t.subscribers, fn)
}

func (t *Telemetry) Events() []Event {
	return append([]Event(nil), t.events...)
}

func (t *Telemetry) Stats() TelemetryStats {
	return TelemetryStats{
		Emitted:     len(t.events),
		Dropped:     t.dropped,
		Subscribers: len(t.subscribers),
	}
}

// Clear drops the accumulated event list.
func (t *Telemetry) Clear() {
	t.events = nil
	t.dropped = 0
}
