package app

import (
	"net/http"

	"litemq/internal/broker"
	"litemq/pkg/api"
	"litemq/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// buildHandler assembles the full HTTP surface: the RPC router, Prometheus
// metrics, and the Swagger UI over the static OpenAPI document, the same
// three-way mux split the teacher wires in cmd/progressdb/main.go.
func buildHandler(b *broker.Broker) http.Handler {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(b))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))
	return mux
}
