package recognizer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"strings"
	"sync"

	apperrors "github.com/anime-shed/cccd-inspector-go/internal/errors"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
	"github.com/otiai10/gosseract/v2"
)

// Engine turns an enhanced raster into text with a confidence in [0,1].
// Recognition failures come back as an empty result, not an error.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, opts Options) (models.RecognitionResult, error)
}

// client is the subset of gosseract.Client the engine drives.
type client interface {
	SetTessdataPrefix(prefix string) error
	SetLanguage(langs ...string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
	SetWhitelist(whitelist string) error
	SetImageFromBytes(data []byte) error
	Text() (string, error)
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

var newClient = func() client {
	return gosseract.NewClient()
}

// TesseractEngine creates one Tesseract client per call and always releases it.
type TesseractEngine struct {
	tessdataPrefix string
	bufPool        sync.Pool
}

// NewTesseractEngine creates an engine. An empty prefix uses the library default.
func NewTesseractEngine(tessdataPrefix string) *TesseractEngine {
	return &TesseractEngine{
		tessdataPrefix: tessdataPrefix,
		bufPool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

func (e *TesseractEngine) Name() string {
	return "tesseract"
}

func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, opts Options) (models.RecognitionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.RecognitionResult{}, err
	}
	if img == nil {
		return models.RecognitionResult{}, apperrors.NewProcessingError("no image to recognize", nil)
	}

	buf := e.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.bufPool.Put(buf)
	if err := png.Encode(buf, img); err != nil {
		return models.RecognitionResult{}, apperrors.NewProcessingError("failed to encode image for recognition", err)
	}

	c := newClient()
	defer c.Close()

	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return models.RecognitionResult{}, apperrors.NewInternalError("failed to set tessdata prefix", err)
		}
	}
	if err := c.SetLanguage(opts.Languages...); err != nil {
		return models.RecognitionResult{}, apperrors.NewInternalError("failed to set recognition language", err)
	}
	if err := c.SetPageSegMode(opts.PageSegMode.tesseract()); err != nil {
		return models.RecognitionResult{}, apperrors.NewInternalError("failed to set page segmentation mode", err)
	}
	if opts.Whitelist != "" {
		if err := c.SetWhitelist(opts.Whitelist); err != nil {
			return models.RecognitionResult{}, apperrors.NewInternalError("failed to set whitelist", err)
		}
	}

	log := logger.Component("recognizer").WithField("psm", opts.PageSegMode.String())
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		log.WithError(err).Warn("engine rejected image")
		return models.RecognitionResult{}, nil
	}
	text, err := c.Text()
	if err != nil {
		log.WithError(err).Warn("recognition failed")
		return models.RecognitionResult{}, nil
	}

	var raw float64
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		log.WithError(err).Debug("word confidences unavailable")
	} else {
		raw = meanConfidence(boxes)
	}
	return Normalize(text, raw), nil
}

func meanConfidence(boxes []gosseract.BoundingBox) float64 {
	var sum float64
	n := 0
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		sum += b.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Normalize builds a RecognitionResult from engine output. Blank text yields the empty
// result, scores above 1 are read as percentages, and the confidence is clamped to [0,1].
func Normalize(text string, raw float64) models.RecognitionResult {
	if strings.TrimSpace(text) == "" {
		return models.RecognitionResult{}
	}
	if math.IsNaN(raw) || raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw /= 100
	}
	return models.RecognitionResult{
		Text:       text,
		Confidence: math.Min(raw, 1),
	}
}
