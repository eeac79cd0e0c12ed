package miner

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kalepail/fcm-miner/internal/metrics"
)

// monitorWindow is the number of rate samples averaged for smoothing.
const monitorWindow = 10

// Monitor periodically samples the shared hash counter and publishes a
// smoothed hashrate. It only ever reads search state; its cadence has
// no effect on search correctness or termination.
type Monitor struct {
	counter  *atomic.Uint64
	best     *atomic.Int64
	interval time.Duration
	rec      metrics.Recorder

	mu        sync.RWMutex
	window    []float64
	rate      float64
	lastCount uint64
	lastTime  time.Time
}

// NewMonitor builds a monitor over the given counters. Start must be
// called to begin sampling.
func NewMonitor(counter *atomic.Uint64, best *atomic.Int64, interval time.Duration, rec metrics.Recorder) *Monitor {
	if rec == nil {
		rec = metrics.Default
	}
	return &Monitor{counter: counter, best: best, interval: interval, rec: rec}
}

// Start begins periodic sampling; the returned stop function halts the
// loop and waits for it to exit.
func (mo *Monitor) Start() func() {
	mo.mu.Lock()
	mo.lastCount = mo.counter.Load()
	mo.lastTime = time.Now()
	mo.mu.Unlock()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(mo.interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				mo.sample(now, mo.counter.Load())
				if mo.best != nil {
					mo.rec.BestZeros(int(mo.best.Load()))
				}
			case <-stop:
				return
			}
		}
	}()
	return func() {
		close(stop)
		<-done
	}
}

// sample folds one counter reading into the sliding window and reports
// the windowed mean.
func (mo *Monitor) sample(now time.Time, count uint64) {
	mo.mu.Lock()
	elapsed := now.Sub(mo.lastTime).Seconds()
	if elapsed <= 0 {
		mo.mu.Unlock()
		return
	}
	delta := count - mo.lastCount
	mo.window = append(mo.window, float64(delta)/elapsed)
	if len(mo.window) > monitorWindow {
		mo.window = mo.window[1:]
	}
	var sum float64
	for _, r := range mo.window {
		sum += r
	}
	mo.rate = sum / float64(len(mo.window))
	mo.lastCount = count
	mo.lastTime = now
	rate := mo.rate
	mo.mu.Unlock()

	mo.rec.HashesAdded(delta)
	mo.rec.HashrateUpdated(rate)
	log.Printf("hashrate %.2f MH/s", rate/1e6)
}

// Rate returns the current smoothed hashrate in hashes per second.
func (mo *Monitor) Rate() float64 {
	mo.mu.RLock()
	defer mo.mu.RUnlock()
	return mo.rate
}
