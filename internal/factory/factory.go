// Package factory turns configuration into concrete components.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/anime-shed/cccd-inspector-go/internal/cache"
	"github.com/anime-shed/cccd-inspector-go/internal/config"
	"github.com/anime-shed/cccd-inspector-go/internal/enhance"
	"github.com/anime-shed/cccd-inspector-go/internal/pipeline"
	"github.com/anime-shed/cccd-inspector-go/internal/quality"
	"github.com/anime-shed/cccd-inspector-go/internal/recognizer"
	"github.com/anime-shed/cccd-inspector-go/internal/repository"
	"github.com/anime-shed/cccd-inspector-go/internal/storage"
)

// EngineType names a recognition backend.
type EngineType string

const (
	TesseractEngine EngineType = "tesseract"
)

// CacheType names a result cache backend.
type CacheType string

const (
	NoCache     CacheType = "none"
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
)

// StoreType names a KYC store backend.
type StoreType string

const (
	MemoryStore   StoreType = "memory"
	PostgresStore StoreType = "postgres"
	SQLiteStore   StoreType = "sqlite"
)

// ComponentFactory builds components from one configuration.
type ComponentFactory struct {
	cfg *config.Config
}

func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{cfg: cfg}
}

// CreateEngine builds the recognition engine.
func (f *ComponentFactory) CreateEngine() (recognizer.Engine, error) {
	switch EngineType(f.cfg.OCR.Engine) {
	case TesseractEngine:
		return recognizer.NewTesseractEngine(f.cfg.OCR.TessdataPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", f.cfg.OCR.Engine)
	}
}

// CreateGate builds the quality gate, with the corner check when enabled.
func (f *ComponentFactory) CreateGate() quality.Gate {
	var corners quality.CornerDetector
	if f.cfg.Pipeline.CornerCheck {
		corners = quality.DefaultContrastCorners()
	}
	return quality.NewGate(quality.DefaultOptions(), corners)
}

// EnhanceOptions maps the enhancement settings onto a preset.
func (f *ComponentFactory) EnhanceOptions() enhance.Options {
	c := f.cfg.Enhance
	if enhance.Mode(c.Mode) == enhance.ModeLightweight {
		opts := enhance.LightweightOptions()
		if c.Scale > 0 {
			opts = opts.WithScale(c.Scale)
		}
		return opts
	}
	opts := enhance.DefaultOptions().WithCLAHE(c.ClipLimit, c.TileSize)
	if c.Scale > 0 {
		opts = opts.WithScale(c.Scale)
	}
	return opts
}

// PipelineOptions maps configuration onto orchestrator options.
func (f *ComponentFactory) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions().WithEnhance(f.EnhanceOptions())
	if f.cfg.Pipeline.StrictQuality {
		opts = opts.WithStrictQuality()
	}
	if f.cfg.Pipeline.UseQRCode {
		opts = opts.WithQRCode()
	}
	if mode := pipeline.ConfidenceMode(f.cfg.Pipeline.ConfidenceMode); mode != "" {
		opts = opts.WithConfidence(mode)
	}
	if f.cfg.OCR.Language != "" {
		opts.Language = f.cfg.OCR.Language
	}
	if f.cfg.OCR.DigitLanguage != "" {
		opts.DigitLanguage = f.cfg.OCR.DigitLanguage
	}
	opts.Workers = f.cfg.Pipeline.Workers
	return opts
}

// CreateCache builds the result cache. A Redis cache is pinged before use.
func (f *ComponentFactory) CreateCache(ctx context.Context) (cache.Cache, error) {
	c := f.cfg.Cache
	switch CacheType(c.Driver) {
	case NoCache, "":
		return cache.Nop{}, nil
	case MemoryCache:
		return cache.NewMemory(), nil
	case RedisCache:
		rc := cache.NewRedis(cache.RedisOptions{
			Addr:        c.RedisAddr,
			Password:    c.RedisPassword,
			DB:          c.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		if err := rc.Ping(ctx); err != nil {
			rc.Close()
			return nil, fmt.Errorf("redis cache unavailable: %w", err)
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", c.Driver)
	}
}

// CreateKYCRepository builds the KYC store.
func (f *ComponentFactory) CreateKYCRepository() (repository.KYCRepository, error) {
	switch s := StoreType(f.cfg.Store.Driver); s {
	case MemoryStore, "":
		return repository.NewMemoryKYCRepository(), nil
	case PostgresStore, SQLiteStore:
		return repository.OpenGormKYCRepository(string(s), f.cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", f.cfg.Store.Driver)
	}
}

// CreateHTTPFetcher builds the retrying URL fetcher.
func (f *ComponentFactory) CreateHTTPFetcher() storage.Fetcher {
	return storage.NewHTTPFetcher(f.cfg.ImageFetchTimeout).WithMaxBytes(f.cfg.MaxRequestBodySize)
}

// CreateBlobFetcher builds the Azure fetcher, or returns nil when no account is configured.
func (f *ComponentFactory) CreateBlobFetcher() (storage.Fetcher, error) {
	if !f.cfg.AzureEnabled() {
		return nil, nil
	}
	fetcher, err := storage.NewAzureBlobFetcher(f.cfg.Azure.Account, f.cfg.Azure.Key)
	if err != nil {
		return nil, err
	}
	return fetcher, nil
}
