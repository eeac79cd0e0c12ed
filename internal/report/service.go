package report

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/kalepail/fcm-miner/internal/miner"
)

// Provider supplies search snapshots for the session summary.
type Provider interface {
	Status() miner.Snapshot
}

// Service periodically logs a mining-session summary: uptime, total
// hashes, the average rate since start and the best digest seen. It is
// coarser and calmer than the per-interval hashrate line, meant for
// long unattended runs.
type Service struct {
	provider Provider
	cronSpec string
	stopCh   chan struct{}
}

// New constructs a report service.
func New(p Provider, cronSpec string) *Service {
	return &Service{provider: p, cronSpec: cronSpec, stopCh: make(chan struct{})}
}

// Start registers the cron job. It returns a function to stop the scheduler.
func (s *Service) Start() (func(), error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(s.cronSpec, s.run)
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() {
		close(s.stopCh)
		c.Stop()
	}, nil
}

func (s *Service) run() {
	s.RunNow()
}

// RunNow logs the summary immediately (for shutdown or testing).
func (s *Service) RunNow() {
	snap := s.provider.Status()
	avg := 0.0
	if snap.ElapsedSec > 0 {
		avg = float64(snap.Hashes) / snap.ElapsedSec
	}
	log.Printf("session: state=%s elapsed=%.0fs hashes=%d avg=%.2f MH/s best=%d zeros",
		snap.State, snap.ElapsedSec, snap.Hashes, avg/1e6, snap.BestZeros)
}
