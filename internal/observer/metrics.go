package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cccd_inspector"

// MetricsObserver turns events into Prometheus series.
type MetricsObserver struct {
	pipelines        *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	stageDuration    *prometheus.HistogramVec
	confidence       prometheus.Histogram
	extractionSource *prometheus.CounterVec
	fetches          *prometheus.CounterVec
	kycDecisions     *prometheus.CounterVec
}

// NewMetricsObserver registers its collectors with reg. Callers own the registry so
// tests and binaries do not share global state.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		pipelines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome",
		}, []string{"outcome"}),
		pipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Duration of complete pipeline runs",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "confidence",
			Help:      "Confidence score of completed runs",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		extractionSource: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "extraction_source_total",
			Help:      "Completed runs by the path that produced the record",
		}, []string{"source"}),
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "image_fetches_total",
			Help:      "Remote image fetches by outcome",
		}, []string{"outcome"}),
		kycDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kyc",
			Name:      "decisions_total",
			Help:      "KYC decisions by verification status",
		}, []string{"status"}),
	}
}

func (o *MetricsObserver) Name() string { return "metrics_observer" }

func (o *MetricsObserver) OnEvent(_ context.Context, event Event) {
	switch event.Type {
	case StageCompleted:
		o.stageDuration.WithLabelValues(event.Stage).Observe(event.Duration.Seconds())
	case PipelineCompleted:
		o.pipelines.WithLabelValues("completed").Inc()
		o.pipelineDuration.Observe(event.Duration.Seconds())
		if c, ok := event.Metadata[MetaConfidence].(float64); ok {
			o.confidence.Observe(c)
		}
		if s, ok := event.Metadata[MetaSource].(string); ok && s != "" {
			o.extractionSource.WithLabelValues(s).Inc()
		}
	case PipelineFailed:
		o.pipelines.WithLabelValues("failed").Inc()
	case ImageFetched:
		o.fetches.WithLabelValues("success").Inc()
	case ImageFetchFailed:
		o.fetches.WithLabelValues("failure").Inc()
	case KYCDecided:
		if s, ok := event.Metadata[MetaStatus].(string); ok {
			o.kycDecisions.WithLabelValues(s).Inc()
		}
	}
}
