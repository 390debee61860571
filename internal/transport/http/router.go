package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	issuancehandler "issuer-gateway/internal/issuance/handler"
)

// NewRouter wires all public endpoints. Business routes live on the issuance
// handler; this layer only adds the operational surface.
func NewRouter(issuance *issuancehandler.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health/alive", handleAlive)
	r.Handle("/metrics", promhttp.Handler())

	issuance.Register(r, logger)

	return r
}

func handleAlive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
