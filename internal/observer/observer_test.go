package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) Name() string { return o.name }

func (o *recordingObserver) OnEvent(_ context.Context, e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

type panickingObserver struct{}

func (panickingObserver) Name() string { return "panicking" }
func (panickingObserver) OnEvent(context.Context, Event) { panic("boom") }

func TestEventPublisher_FansOut(t *testing.T) {
	a := &recordingObserver{name: "a"}
	b := &recordingObserver{name: "b"}
	p := NewEventPublisher(a, b, panickingObserver{})

	p.Publish(context.Background(), Event{Type: PipelineStarted})
	p.Publish(context.Background(), Event{Type: PipelineCompleted})
	p.Flush()

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("Expected 2 events per observer, got %d and %d", a.count(), b.count())
	}
	if a.events[0].Timestamp.IsZero() {
		t.Error("Expected publisher to stamp events")
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	a := &recordingObserver{name: "a"}
	p := NewEventPublisher(a)
	p.Unsubscribe(&recordingObserver{name: "a"})

	p.Publish(context.Background(), Event{Type: PipelineStarted})
	p.Flush()

	if a.count() != 0 {
		t.Errorf("Expected no events after unsubscribe, got %d", a.count())
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)

	o := NewLoggingObserver(l)
	o.OnEvent(context.Background(), Event{
		Type:      PipelineCompleted,
		RequestID: "req-1",
		Duration:  1500 * time.Millisecond,
		Success:   true,
		Metadata:  map[string]interface{}{MetaConfidence: 0.95},
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q", buf.String())
	}
	if entry["msg"] != "Pipeline completed" {
		t.Errorf("Expected completion message, got %v", entry["msg"])
	}
	if entry["request_id"] != "req-1" || entry["duration_ms"] != float64(1500) {
		t.Errorf("Unexpected fields %v", entry)
	}
	if entry[MetaConfidence] != 0.95 {
		t.Errorf("Expected metadata to be logged, got %v", entry[MetaConfidence])
	}
}

func TestLoggingObserver_Levels(t *testing.T) {
	tests := []struct {
		eventType EventType
		level     string
	}{
		{PipelineStarted, "info"},
		{StageCompleted, "debug"},
		{PipelineFailed, "error"},
		{ImageFetchFailed, "warning"},
		{KYCDecided, "info"},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			var buf bytes.Buffer
			l := logrus.New()
			l.SetOutput(&buf)
			l.SetFormatter(&logrus.JSONFormatter{})
			l.SetLevel(logrus.DebugLevel)

			NewLoggingObserver(l).OnEvent(context.Background(), Event{Type: tt.eventType})
			if !strings.Contains(buf.String(), `"level":"`+tt.level+`"`) {
				t.Errorf("Expected level %s, got %s", tt.level, buf.String())
			}
		})
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewMetricsObserver(reg)
	ctx := context.Background()

	o.OnEvent(ctx, Event{Type: StageCompleted, Stage: "recognize", Duration: time.Second})
	o.OnEvent(ctx, Event{Type: PipelineCompleted, Duration: 2 * time.Second, Metadata: map[string]interface{}{
		MetaConfidence: 0.75,
		MetaSource:     "regex",
	}})
	o.OnEvent(ctx, Event{Type: PipelineCompleted, Metadata: map[string]interface{}{MetaSource: "mrz"}})
	o.OnEvent(ctx, Event{Type: PipelineFailed})
	o.OnEvent(ctx, Event{Type: ImageFetchFailed})
	o.OnEvent(ctx, Event{Type: KYCDecided, Metadata: map[string]interface{}{MetaStatus: "verified"}})

	tests := []struct {
		name, label, value string
		want               float64
	}{
		{"cccd_inspector_pipeline_runs_total", "outcome", "completed", 2},
		{"cccd_inspector_pipeline_runs_total", "outcome", "failed", 1},
		{"cccd_inspector_pipeline_extraction_source_total", "source", "regex", 1},
		{"cccd_inspector_pipeline_extraction_source_total", "source", "mrz", 1},
		{"cccd_inspector_storage_image_fetches_total", "outcome", "failure", 1},
		{"cccd_inspector_kyc_decisions_total", "status", "verified", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.value, func(t *testing.T) {
			if got := counterValue(t, reg, tt.name, tt.label, tt.value); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMetricsObserver_SeparateRegistries(t *testing.T) {
	// Two observers on separate registries must not collide.
	NewMetricsObserver(prometheus.NewRegistry())
	NewMetricsObserver(prometheus.NewRegistry())
}

func TestRequestIDContext(t *testing.T) {
	if got := RequestIDFrom(context.Background()); got != "" {
		t.Errorf("Expected empty id, got %q", got)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFrom(ctx); got != "req-1" {
		t.Errorf("Expected req-1, got %q", got)
	}
}
