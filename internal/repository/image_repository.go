package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anime-shed/cccd-inspector-go/internal/observer"
	"github.com/anime-shed/cccd-inspector-go/internal/storage"
	"github.com/anime-shed/cccd-inspector-go/pkg/validation"
)

// SourceRepository dispatches references to a fetcher by scheme.
type SourceRepository struct {
	fetchers  map[string]storage.Fetcher
	validator *validation.SourceValidator
	events    observer.Publisher
}

// NewSourceRepository creates a repository. http and https share the HTTP fetcher;
// a nil blob fetcher leaves azblob references unsupported.
func NewSourceRepository(httpFetcher, blobFetcher storage.Fetcher, events observer.Publisher) *SourceRepository {
	if events == nil {
		events = observer.Nop{}
	}
	fetchers := map[string]storage.Fetcher{}
	if httpFetcher != nil {
		fetchers["http"] = httpFetcher
		fetchers["https"] = httpFetcher
	}
	if blobFetcher != nil {
		fetchers[storage.BlobScheme] = blobFetcher
	}
	return &SourceRepository{
		fetchers:  fetchers,
		validator: validation.NewSourceValidator(),
		events:    events,
	}
}

func (r *SourceRepository) ValidateReference(ref string) error {
	_, err := r.resolve(ref)
	return err
}

func (r *SourceRepository) Fetch(ctx context.Context, ref string) ([]byte, error) {
	fetcher, err := r.resolve(ref)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := fetcher.Fetch(ctx, ref)
	event := observer.Event{
		Type:      observer.ImageFetched,
		RequestID: observer.RequestIDFrom(ctx),
		Source:    schemeOf(ref),
		Duration:  time.Since(start),
		Success:   err == nil,
		Metadata:  map[string]interface{}{"bytes": len(data)},
	}
	if err != nil {
		event.Type = observer.ImageFetchFailed
		event.Error = err.Error()
	}
	r.events.Publish(ctx, event)
	return data, err
}

func (r *SourceRepository) resolve(ref string) (storage.Fetcher, error) {
	scheme, err := r.validator.ValidateSource(ref)
	if err != nil {
		return nil, err
	}
	fetcher, ok := r.fetchers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, scheme)
	}
	return fetcher, nil
}

func schemeOf(ref string) string {
	scheme, _, _ := strings.Cut(ref, ":")
	return strings.ToLower(scheme)
}
