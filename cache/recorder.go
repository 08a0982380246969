package cache

import "time"

// Recorder receives cache events. The root astrocache.MetricsCollector
// implementations satisfy it.
type Recorder interface {
	RecordCacheHit(name string)
	RecordCacheMiss(name string)
	RecordCacheCorrupt(name string)
	RecordCompute(name string, duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordCacheHit(string)                      {}
func (noopRecorder) RecordCacheMiss(string)                     {}
func (noopRecorder) RecordCacheCorrupt(string)                  {}
func (noopRecorder) RecordCompute(string, time.Duration, error) {}
