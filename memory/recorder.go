package memory

import "time"

// Recorder receives eviction events. The root astrocache.MetricsCollector
// implementations satisfy it.
type Recorder interface {
	RecordEviction(key string, idle time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordEviction(string, time.Duration) {}
