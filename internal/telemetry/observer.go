package telemetry

import "time"

// Observer receives store events. Implementations must not call back into
// the store.
type Observer interface {
	SampleIngested(windowLen int)
	Flushed(rows int, elapsed time.Duration)
	FlushFailed(err error)
	Rotated(path string)
	FileRecreated(path string)
}

type noopObserver struct{}

func (noopObserver) SampleIngested(int) {}
func (noopObserver) Flushed(int, time.Duration) {}
func (noopObserver) FlushFailed(error) {}
func (noopObserver) Rotated(string) {}
func (noopObserver) FileRecreated(string) {}
