package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/cccd-inspector-go/internal/cache"
	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/internal/observer"
	"github.com/anime-shed/cccd-inspector-go/internal/pipeline"
	"github.com/anime-shed/cccd-inspector-go/internal/quality"
	"github.com/anime-shed/cccd-inspector-go/internal/repository"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// ImageInput is either uploaded bytes or a reference to fetch. Data wins when both are set.
type ImageInput struct {
	Ref  string
	Data []byte
}

func (in ImageInput) empty() bool {
	return len(in.Data) == 0 && strings.TrimSpace(in.Ref) == ""
}

// ScanInput is one OCR request after transport decoding.
type ScanInput struct {
	Front        ImageInput
	Back         ImageInput
	NumberOnly   bool
	ExpectedText string
	Region       *models.Region
}

// OCRService turns card images into pipeline results.
type OCRService interface {
	Scan(ctx context.Context, in ScanInput) (*models.ScanResponse, error)
	Quality(ctx context.Context, in ImageInput) (*models.QualityReport, error)
}

type ocrService struct {
	images   repository.ImageRepository
	pipeline pipeline.Pipeline
	gate     quality.Gate
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logrus.Entry
}

// NewOCRService creates the service. A nil cache disables caching.
func NewOCRService(
	images repository.ImageRepository,
	pl pipeline.Pipeline,
	gate quality.Gate,
	resultCache cache.Cache,
	cacheTTL time.Duration,
) OCRService {
	if resultCache == nil {
		resultCache = cache.Nop{}
	}
	return &ocrService{
		images:   images,
		pipeline: pl,
		gate:     gate,
		cache:    resultCache,
		cacheTTL: cacheTTL,
		log:      logger.Component("ocr_service"),
	}
}

func (s *ocrService) Scan(ctx context.Context, in ScanInput) (*models.ScanResponse, error) {
	if in.Front.empty() {
		return nil, apperrors.NewValidationError("front image is required", nil)
	}

	frontData, err := s.load(ctx, in.Front)
	if err != nil {
		return nil, err
	}
	var backData []byte
	if !in.Back.empty() && !in.NumberOnly {
		if backData, err = s.load(ctx, in.Back); err != nil {
			return nil, err
		}
	}

	key := cache.Key(cacheMode(in), frontData, backData)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WithError(err).Warn("Result cache lookup failed")
	} else if ok {
		s.log.WithField("request_id", observer.RequestIDFrom(ctx)).Debug("Result cache hit")
		return &models.ScanResponse{PipelineResult: *cached, Cached: true}, nil
	}

	req := pipeline.Request{ID: observer.RequestIDFrom(ctx), NumberOnly: in.NumberOnly}
	if req.Front, err = decodeImage(frontData); err != nil {
		return nil, err
	}
	if backData != nil {
		if req.Back, err = decodeImage(backData); err != nil {
			return nil, err
		}
	}
	if in.Region != nil {
		req.Region = image.Rect(in.Region.X, in.Region.Y, in.Region.X+in.Region.Width, in.Region.Y+in.Region.Height)
	}

	result, err := s.pipeline.Run(ctx, req)
	if err != nil {
		return nil, mapPipelineError(err)
	}

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("Result cache store failed")
	}

	resp := &models.ScanResponse{PipelineResult: *result}
	if in.ExpectedText != "" && result.Diagnostics != nil {
		recognized := strings.TrimSpace(result.Diagnostics.FrontText + "\n" + result.Diagnostics.BackText)
		acc := ComputeAccuracy(in.ExpectedText, recognized)
		resp.Accuracy = &acc
	}
	return resp, nil
}

func (s *ocrService) Quality(ctx context.Context, in ImageInput) (*models.QualityReport, error) {
	if in.empty() {
		return nil, apperrors.NewValidationError("image is required", nil)
	}
	data, err := s.load(ctx, in)
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	report := s.gate.Inspect(img)
	return &report, nil
}

func (s *ocrService) load(ctx context.Context, in ImageInput) ([]byte, error) {
	if len(in.Data) > 0 {
		return in.Data, nil
	}
	if err := s.images.ValidateReference(in.Ref); err != nil {
		if errors.Is(err, repository.ErrUnsupportedSource) {
			return nil, apperrors.NewValidationError("image source not supported", err)
		}
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}
	data, err := s.images.Fetch(ctx, in.Ref)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	return data, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to decode image", err)
	}
	return img, nil
}

func cacheMode(in ScanInput) string {
	mode := "full"
	if in.NumberOnly {
		mode = "number_only"
	}
	if r := in.Region; r != nil {
		mode = fmt.Sprintf("%s@%d,%d,%dx%d", mode, r.X, r.Y, r.Width, r.Height)
	}
	return mode
}

func mapPipelineError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("pipeline timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("request cancelled", err)
	case errors.Is(err, pipeline.ErrNoImage), errors.Is(err, pipeline.ErrEmptyImage):
		return apperrors.NewValidationError("image has no content", err)
	default:
		return apperrors.NewProcessingError("text recognition failed", err)
	}
}
