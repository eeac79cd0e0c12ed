package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/kalepail/fcm-miner/internal/config"
	"github.com/kalepail/fcm-miner/internal/job"
	"github.com/kalepail/fcm-miner/internal/metrics"
	"github.com/kalepail/fcm-miner/internal/miner"
	"github.com/kalepail/fcm-miner/internal/report"
	"github.com/kalepail/fcm-miner/internal/status"
)

func main() {
	cfgPath := flag.String("config", "", "Path to optional YAML config file")
	index := flag.Uint64("index", 0, "Block index")
	prevHashHex := flag.String("prev-hash", "", "Previous block hash (64 hex chars)")
	minerHex := flag.String("miner", "", "Miner account key (64 hex chars)")
	message := flag.String("message", "KALE", "Block message")
	difficulty := flag.Int("difficulty", -1, "Required leading zero hex digits")
	workers := flag.Int("workers", 0, "Worker goroutines (default: all logical CPUs)")
	metricsListen := flag.String("metrics-listen", "", "Address for /metrics and /status (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *metricsListen != "" {
		cfg.MetricsListen = *metricsListen
	}

	// Every work field is validated here; the search core trusts its
	// inputs and has no recovery path for malformed ones.
	if *difficulty < 0 {
		log.Fatalf("difficulty: required, must be >= 0")
	}
	if *difficulty > job.MaxZeros {
		log.Fatalf("difficulty: a %d-byte digest has at most %d hex digits", job.DigestLen, job.MaxZeros)
	}
	prevHash, err := decodeHash("prev-hash", *prevHashHex)
	if err != nil {
		log.Fatalf("%v", err)
	}
	minerKey, err := decodeHash("miner", *minerHex)
	if err != nil {
		log.Fatalf("%v", err)
	}
	work := job.Work{
		Index:    *index,
		Message:  []byte(*message),
		PrevHash: prevHash,
		Miner:    minerKey,
		Target:   *difficulty,
	}

	log.Printf("cpu: %s (%d logical cores)", cpuid.CPU.BrandName, cpuid.CPU.LogicalCores)

	prom, err := metrics.NewPromRecorder("fcm_miner")
	if err != nil {
		log.Fatalf("init metrics: %v", err)
	}
	metrics.Default = prom

	m := miner.New(work, miner.Options{
		Workers:       cfg.Workers,
		BatchSize:     cfg.BatchSize,
		StatsInterval: time.Duration(cfg.StatsIntervalSecs) * time.Second,
		Recorder:      prom,
	})

	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler())
		mux.Handle("/status", status.New(m))
		go func() {
			log.Printf("metrics/status listening on %s", cfg.MetricsListen)
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				log.Printf("metrics server error: %v", err)
			}
		}()
	}

	var rep *report.Service
	if cfg.ReportCron != "" {
		rep = report.New(m, cfg.ReportCron)
		stopReport, err := rep.Start()
		if err != nil {
			log.Fatalf("start report: %v", err)
		}
		defer stopReport()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("mining index=%d difficulty=%d workers=%d", work.Index, work.Target, m.Status().Workers)
	res, err := m.Search(ctx)
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	if rep != nil {
		rep.RunNow()
	}

	// The result line is the only thing written to stdout, so callers
	// can parse it without filtering diagnostics.
	fmt.Printf("[%d, %q]\n", res.Nonce, hex.EncodeToString(res.Digest[:]))
}

func decodeHash(field, value string) ([job.HashLen]byte, error) {
	var out [job.HashLen]byte
	if value == "" {
		return out, fmt.Errorf("%s: required", field)
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return out, fmt.Errorf("%s: invalid hex: %w", field, err)
	}
	if len(raw) != job.HashLen {
		return out, fmt.Errorf("%s: must be %d bytes, got %d", field, job.HashLen, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
