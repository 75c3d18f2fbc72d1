package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/anime-shed/cccd-inspector-go/internal/cache"
	"github.com/anime-shed/cccd-inspector-go/internal/config"
	"github.com/anime-shed/cccd-inspector-go/internal/factory"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/internal/observer"
	"github.com/anime-shed/cccd-inspector-go/internal/pipeline"
	"github.com/anime-shed/cccd-inspector-go/internal/repository"
	"github.com/anime-shed/cccd-inspector-go/internal/service"
	"github.com/anime-shed/cccd-inspector-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	registry   *prometheus.Registry
	events     *observer.EventPublisher
	pipeline   pipeline.Pipeline
	cache      cache.Cache
	kycRepo    repository.KYCRepository
	ocrService service.OCRService
	kycService service.KYCService
	handler    http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	f := factory.NewComponentFactory(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	events := observer.NewEventPublisher(
		observer.NewLoggingObserver(logger.Logger),
		observer.NewMetricsObserver(registry),
	)

	engine, err := f.CreateEngine()
	if err != nil {
		return nil, err
	}
	gate := f.CreateGate()
	pl := pipeline.New(engine, f.PipelineOptions(),
		pipeline.WithGate(gate),
		pipeline.WithPublisher(events),
	)

	blobFetcher, err := f.CreateBlobFetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create blob storage: %w", err)
	}
	images := repository.NewSourceRepository(f.CreateHTTPFetcher(), blobFetcher, events)

	resultCache, err := f.CreateCache(ctx)
	if err != nil {
		return nil, err
	}
	kycRepo, err := f.CreateKYCRepository()
	if err != nil {
		resultCache.Close()
		return nil, fmt.Errorf("failed to open KYC store: %w", err)
	}

	ocrService := service.NewOCRService(images, pl, gate, resultCache, cfg.Cache.TTL)
	kycService := service.NewKYCService(kycRepo, cfg.KYC.VerifyThreshold, events)

	return &Container{
		config:     cfg,
		registry:   registry,
		events:     events,
		pipeline:   pl,
		cache:      resultCache,
		kycRepo:    kycRepo,
		ocrService: ocrService,
		kycService: kycService,
		handler:    transport.NewHandler(ocrService, kycService, cfg, registry),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Pipeline() pipeline.Pipeline {
	return c.pipeline
}

func (c *Container) OCRService() service.OCRService {
	return c.ocrService
}

// Close waits for pending events and releases the cache and store connections.
func (c *Container) Close() error {
	c.events.Flush()
	return errors.Join(c.cache.Close(), c.kycRepo.Close())
}
