package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromRecorder implements Recorder backed by Prometheus counters/gauges.
type PromRecorder struct {
	registry     *prometheus.Registry
	handler      http.Handler
	workers      prometheus.Gauge
	hashesTotal  prometheus.Counter
	hashrate     prometheus.Gauge
	bestZeros    prometheus.Gauge
	solutions    prometheus.Counter
	solutionSize prometheus.Gauge
}

// NewPromRecorder creates a Prometheus-backed Recorder and exposes a handler for metrics scraping.
// Namespace is prefixed on all metrics; if empty, "fcm_miner" is used.
func NewPromRecorder(namespace string) (*PromRecorder, error) {
	if namespace == "" {
		namespace = "fcm_miner"
	}
	reg := prometheus.NewRegistry()

	workers := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "workers", Help: "Worker goroutines in the current search."})
	hashesTotal := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "hashes_total", Help: "Total preimage hashes computed."})
	hashrate := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "hashrate", Help: "Smoothed hashrate in hashes per second."})
	bestZeros := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "best_leading_zeros", Help: "Best leading-zero-digit count seen so far."})
	solutions := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "solutions_total", Help: "Qualifying nonces found."})
	solutionSize := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "solution_leading_zeros", Help: "Leading-zero-digit count of the last solution."})

	collectors := []prometheus.Collector{workers, hashesTotal, hashrate, bestZeros, solutions, solutionSize}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &PromRecorder{
		registry:     reg,
		handler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		workers:      workers,
		hashesTotal:  hashesTotal,
		hashrate:     hashrate,
		bestZeros:    bestZeros,
		solutions:    solutions,
		solutionSize: solutionSize,
	}, nil
}

// Handler exposes the HTTP handler for scraping.
func (p *PromRecorder) Handler() http.Handler {
	return p.handler
}

func (p *PromRecorder) SearchStarted(workers int)      { p.workers.Set(float64(workers)) }
func (p *PromRecorder) HashesAdded(n uint64)           { p.hashesTotal.Add(float64(n)) }
func (p *PromRecorder) HashrateUpdated(perSec float64) { p.hashrate.Set(perSec) }
func (p *PromRecorder) BestZeros(zeros int)            { p.bestZeros.Set(float64(zeros)) }
func (p *PromRecorder) SolutionFound(zeros int) {
	p.solutions.Inc()
	p.solutionSize.Set(float64(zeros))
}
