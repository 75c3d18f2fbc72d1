package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/cccd-inspector-go/internal/logger"
)

// Event is emitted by the pipeline and the services around it.
type Event struct {
	Type      EventType              `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Stage     string                 `json:"stage,omitempty"`
	Source    string                 `json:"source,omitempty"` // image reference, never image content
	Duration  time.Duration          `json:"duration"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// EventType names an event.
type EventType string

const (
	PipelineStarted   EventType = "pipeline_started"
	StageCompleted    EventType = "stage_completed"
	PipelineCompleted EventType = "pipeline_completed"
	PipelineFailed    EventType = "pipeline_failed"
	ImageFetched      EventType = "image_fetched"
	ImageFetchFailed  EventType = "image_fetch_failed"
	KYCDecided        EventType = "kyc_decided"
)

// Metadata keys understood by the bundled observers.
const (
	MetaConfidence  = "confidence"
	MetaFormatValid = "format_valid"
	MetaSource      = "extraction_source"
	MetaFields      = "fields"
	MetaStatus      = "status"
)

// Observer receives events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
	Name() string
}

// Publisher fans events out to observers.
type Publisher interface {
	Subscribe(o Observer)
	Unsubscribe(o Observer)
	Publish(ctx context.Context, event Event)
}

// EventPublisher notifies every observer on its own goroutine. A panicking observer is
// logged and does not affect the others.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a publisher with the given observers subscribed.
func NewEventPublisher(observers ...Observer) *EventPublisher {
	p := &EventPublisher{}
	for _, o := range observers {
		p.Subscribe(o)
	}
	return p
}

func (p *EventPublisher) Subscribe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

func (p *EventPublisher) Unsubscribe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, obs := range p.observers {
		if obs.Name() == o.Name() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			return
		}
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, o := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Component("observer").WithFields(logrus.Fields{
						"observer": obs.Name(),
						"panic":    r,
					}).Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(o)
	}
}

// Flush blocks until every notification already published has been handled.
func (p *EventPublisher) Flush() {
	p.inflight.Wait()
}

// Nop discards events.
type Nop struct{}

func (Nop) Subscribe(Observer) {}
func (Nop) Unsubscribe(Observer) {}
func (Nop) Publish(context.Context, Event) {}
