// Package metrics exposes workflow counters on a standalone listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelmagic_project_transitions_total",
		Help: "Project status transitions applied, labelled by target state.",
	}, []string{"to"})

	RejectedTransitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelmagic_rejected_transitions_total",
		Help: "Transition requests rejected by the workflow engine.",
	})

	AssetReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelmagic_asset_reviews_total",
		Help: "Asset review decisions, labelled by resulting state.",
	}, []string{"status"})
)

// Serve blocks on the metrics listener; run it in its own goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		klog.Errorf("metrics listener: %v", err)
	}
}
