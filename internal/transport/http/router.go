package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	reghandler "enroll/internal/registration/handler"
	"enroll/internal/transport/http/shared"
)

// NewRouter wires all public endpoints. Feature handlers mount themselves;
// health and metrics stay here.
func NewRouter(registration *reghandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	registration.Register(r)

	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "enroll",
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
