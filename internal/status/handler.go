package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kalepail/fcm-miner/internal/miner"
)

// Provider supplies point-in-time search snapshots.
type Provider interface {
	Status() miner.Snapshot
}

// Handler serves a lightweight JSON view of the running search.
type Handler struct {
	provider Provider
}

// New returns a status handler over the given provider.
func New(p Provider) http.Handler {
	return &Handler{provider: p}
}

type response struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Search      miner.Snapshot `json:"search"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response{
		GeneratedAt: time.Now().UTC(),
		Search:      h.provider.Status(),
	})
}
