// Package metrics records story and classification counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Classification outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeOutOfRange = "out_of_range"
	OutcomeTimeout    = "timeout"
)

// Resolution sources.
const (
	SourceNumeric    = "numeric"
	SourceClassifier = "classifier"
	SourceReprompt   = "reprompt"
)

// Recorder owns a private registry. A nil *Recorder discards everything.
type Recorder struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	classifyLatency *prometheus.HistogramVec
	resolutions     *prometheus.CounterVec
	scenes          *prometheus.CounterVec
	endings         *prometheus.CounterVec
	runs            *prometheus.CounterVec
}

// NewRecorder creates and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lehua_classifications_total",
				Help: "Free-text classification requests by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		classifyLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lehua_classification_duration_seconds",
				Help:    "Latency of classification requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lehua_resolutions_total",
				Help: "Resolved decisions by category and resolution path.",
			},
			[]string{"category", "source"},
		),
		scenes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lehua_scenes_total",
				Help: "Scenes completed.",
			},
			[]string{"scene"},
		),
		endings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lehua_endings_total",
				Help: "Endings reached.",
			},
			[]string{"ending"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lehua_runs_total",
				Help: "Play-throughs by final status.",
			},
			[]string{"status"},
		),
	}

	r.registry.MustRegister(
		r.classifications,
		r.classifyLatency,
		r.resolutions,
		r.scenes,
		r.endings,
		r.runs,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveClassification(provider, outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.classifications.With(prometheus.Labels{"provider": provider, "outcome": outcome}).Inc()
	r.classifyLatency.With(prometheus.Labels{"provider": provider}).Observe(took.Seconds())
}

func (r *Recorder) ObserveResolution(category, source string) {
	if r == nil {
		return
	}
	r.resolutions.With(prometheus.Labels{"category": category, "source": source}).Inc()
}

func (r *Recorder) ObserveScene(scene string) {
	if r == nil {
		return
	}
	r.scenes.With(prometheus.Labels{"scene": scene}).Inc()
}

func (r *Recorder) ObserveEnding(ending string) {
	if r == nil {
		return
	}
	r.endings.With(prometheus.Labels{"ending": ending}).Inc()
}

func (r *Recorder) ObserveRun(status string) {
	if r == nil {
		return
	}
	r.runs.With(prometheus.Labels{"status": status}).Inc()
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
