package observer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LoggingObserver writes events to a logrus logger.
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) Name() string { return "logging_observer" }

func (o *LoggingObserver) OnEvent(_ context.Context, event Event) {
	fields := logrus.Fields{
		"event_type":  event.Type,
		"duration_ms": event.Duration.Milliseconds(),
		"success":     event.Success,
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.Source != "" {
		fields["source"] = event.Source
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}
	entry := o.logger.WithFields(fields)

	switch event.Type {
	case PipelineStarted:
		entry.Info("Pipeline started")
	case StageCompleted:
		entry.Debug("Pipeline stage completed")
	case PipelineCompleted:
		entry.Info("Pipeline completed")
	case PipelineFailed:
		entry.Error("Pipeline failed")
	case ImageFetched:
		entry.Debug("Image fetched")
	case ImageFetchFailed:
		entry.Warn("Image fetch failed")
	case KYCDecided:
		entry.Info("KYC decision recorded")
	default:
		entry.Info("Event")
	}
}
