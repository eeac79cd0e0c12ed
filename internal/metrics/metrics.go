package metrics

// Recorder defines the metrics hooks for the miner. The default
// implementation is a no-op so the search core never forces a backend
// choice on callers.
type Recorder interface {
	SearchStarted(workers int)
	HashesAdded(n uint64)
	HashrateUpdated(perSec float64)
	BestZeros(zeros int)
	SolutionFound(zeros int)
}

// NoopRecorder implements Recorder without emitting metrics.
type NoopRecorder struct{}

func (NoopRecorder) SearchStarted(workers int)      {}
func (NoopRecorder) HashesAdded(n uint64)           {}
func (NoopRecorder) HashrateUpdated(perSec float64) {}
func (NoopRecorder) BestZeros(zeros int)            {}
func (NoopRecorder) SolutionFound(zeros int)        {}

// Default is the process-wide metrics sink; main swaps in a real
// implementation at startup.
var Default Recorder = NoopRecorder{}
