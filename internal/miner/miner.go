package miner

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalepail/fcm-miner/internal/job"
	"github.com/kalepail/fcm-miner/internal/metrics"
)

// DefaultBatchSize is how many hashes a worker computes between visits
// to the shared counter and found flag. Larger batches cut atomic
// contention; the cost is up to one batch of wasted hashes per worker
// after another worker wins.
const DefaultBatchSize = 50000

// ErrNoSolution is returned when a bounded search exhausts its attempt
// budget without finding a qualifying nonce.
var ErrNoSolution = errors.New("no qualifying nonce within attempt budget")

// State identifies where a search is in its lifecycle.
type State int32

const (
	StateInitializing State = iota
	StateSearching
	StateFound
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Options tune a search. The zero value is usable: one worker per
// logical CPU, the default batch size, no attempt cap, 2s stats.
type Options struct {
	Workers       int           // worker goroutines; <=0 means runtime.NumCPU
	BatchSize     int           // hashes per shared-state visit; <=0 means DefaultBatchSize
	MaxAttempts   uint64        // per-worker hash cap; 0 means unbounded
	StatsInterval time.Duration // monitor cadence; 0 means 2s, negative disables the monitor
	Recorder      metrics.Recorder
}

// Result is a winning nonce and the digest it produces.
type Result struct {
	Nonce  uint64
	Digest [job.DigestLen]byte
}

// Miner runs a single nonce search over one work unit. The nonce space
// is split into arithmetic progressions, one per worker: worker t of w
// owns exactly the nonces t, t+w, t+2w, ... so the progressions tile
// the space with no gaps and no overlap for any worker count.
type Miner struct {
	work job.Work
	opts Options

	state   atomic.Int32
	started time.Time

	hashes atomic.Uint64
	found  atomic.Bool
	best   atomic.Int64

	// Written only by the worker that wins the found CAS; read after
	// every worker has been joined, which is the happens-before edge.
	winNonce  uint64
	winDigest [job.DigestLen]byte

	monitor *Monitor
}

// New prepares a search for w. Search must be called at most once.
func New(w job.Work, opts Options) *Miner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Default
	}
	if opts.StatsInterval == 0 {
		opts.StatsInterval = 2 * time.Second
	}
	m := &Miner{work: w, opts: opts, started: time.Now()}
	m.state.Store(int32(StateInitializing))
	m.monitor = NewMonitor(&m.hashes, &m.best, opts.StatsInterval, opts.Recorder)
	return m
}

// Search spawns the worker pool and blocks until a nonce qualifies, ctx
// is cancelled, or every worker runs out of attempt budget. All workers
// and the throughput monitor are joined before it returns.
func (m *Miner) Search(ctx context.Context) (Result, error) {
	tmpl := job.NewTemplate(m.work)
	m.opts.Recorder.SearchStarted(m.opts.Workers)

	var stopMonitor func()
	if m.opts.StatsInterval > 0 {
		stopMonitor = m.monitor.Start()
	}

	m.state.Store(int32(StateSearching))
	g, ctx := errgroup.WithContext(ctx)
	stride := uint64(m.opts.Workers)
	for id := uint64(0); id < stride; id++ {
		id := id
		g.Go(func() error {
			return m.runWorker(ctx, tmpl.Clone(), id, stride)
		})
	}
	err := g.Wait()

	m.state.Store(int32(StateDraining))
	if stopMonitor != nil {
		stopMonitor()
	}
	m.state.Store(int32(StateTerminated))

	// A published result outranks a cancellation that raced with it.
	if m.found.Load() {
		m.opts.Recorder.SolutionFound(job.LeadingZeroNibbles(m.winDigest[:]))
		return Result{Nonce: m.winNonce, Digest: m.winDigest}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{}, ErrNoSolution
}

// runWorker scans the progression id, id+stride, id+2*stride, ...
// overwriting the nonce slot of its private template copy. Nonce
// arithmetic wraps at 2^64, so an unbounded search never stops on its
// own. Shared state is touched once per batch: the hash counter, the
// best-zeros merge, the found flag and the context check.
func (m *Miner) runWorker(ctx context.Context, tmpl *job.Template, id, stride uint64) error {
	nonce := id
	batch := uint64(m.opts.BatchSize)
	bestLocal := 0
	var attempts uint64
	for {
		n := batch
		if m.opts.MaxAttempts > 0 {
			if attempts >= m.opts.MaxAttempts {
				return nil
			}
			if left := m.opts.MaxAttempts - attempts; left < n {
				n = left
			}
		}
		for i := uint64(0); i < n; i++ {
			tmpl.PutNonce(nonce)
			digest := job.HashPreimage(tmpl.Bytes())
			zeros := job.LeadingZeroNibbles(digest[:])
			if zeros >= m.work.Target {
				// Only the CAS winner publishes. A worker finding a
				// solution after the flag is set discards it.
				if m.found.CompareAndSwap(false, true) {
					m.winNonce = nonce
					m.winDigest = digest
					m.state.Store(int32(StateFound))
				}
				m.hashes.Add(i + 1)
				return nil
			}
			if zeros > bestLocal {
				bestLocal = zeros
			}
			nonce += stride
		}
		attempts += n
		m.hashes.Add(n)
		m.mergeBest(bestLocal)
		if m.found.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// mergeBest raises the shared best-zeros watermark to zeros if it is
// higher. Called once per batch, so a CAS loop is cheap enough.
func (m *Miner) mergeBest(zeros int) {
	for {
		cur := m.best.Load()
		if int64(zeros) <= cur || m.best.CompareAndSwap(cur, int64(zeros)) {
			return
		}
	}
}

// Snapshot is a point-in-time view of a search, safe to take from any
// goroutine.
type Snapshot struct {
	State      string  `json:"state"`
	Index      uint64  `json:"index"`
	Difficulty int     `json:"difficulty"`
	Workers    int     `json:"workers"`
	Hashes     uint64  `json:"hashes"`
	Hashrate   float64 `json:"hashrate"`
	BestZeros  int     `json:"best_zeros"`
	ElapsedSec float64 `json:"elapsed_secs"`
}

// Status reports the current search state for the status API and the
// session report.
func (m *Miner) Status() Snapshot {
	return Snapshot{
		State:      State(m.state.Load()).String(),
		Index:      m.work.Index,
		Difficulty: m.work.Target,
		Workers:    m.opts.Workers,
		Hashes:     m.hashes.Load(),
		Hashrate:   m.monitor.Rate(),
		BestZeros:  int(m.best.Load()),
		ElapsedSec: time.Since(m.started).Seconds(),
	}
}
