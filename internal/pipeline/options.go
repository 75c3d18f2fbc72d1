package pipeline

import (
	"github.com/anime-shed/cccd-inspector-go/internal/enhance"
	"github.com/anime-shed/cccd-inspector-go/internal/recognizer"
)

// ConfidenceMode selects how the confidence score of a non-MRZ run is derived.
type ConfidenceMode string

const (
	// ConfidenceFields is the fraction of critical fields extracted.
	ConfidenceFields ConfidenceMode = "fields"
	// ConfidenceEngine is the mean recognition confidence of the recognized sides.
	ConfidenceEngine ConfidenceMode = "engine"
)

// Options configures an Orchestrator.
type Options struct {
	StrictQuality bool // stop after the quality check when a capture fails it
	UseQRCode     bool
	Confidence    ConfidenceMode
	Enhance       enhance.Options

	Language      string
	DigitLanguage string

	Workers int // batch concurrency, 0 means NumCPU
}

// DefaultOptions returns the service defaults.
func DefaultOptions() Options {
	return Options{
		Confidence:    ConfidenceFields,
		Enhance:       enhance.DefaultOptions(),
		Language:      recognizer.DefaultLanguage,
		DigitLanguage: recognizer.DefaultDigitLanguage,
	}
}

// WithStrictQuality makes failed captures end the run before enhancement.
func (o Options) WithStrictQuality() Options {
	o.StrictQuality = true
	return o
}

// WithQRCode enables the card QR code as an extraction source.
func (o Options) WithQRCode() Options {
	o.UseQRCode = true
	return o
}

// WithConfidence sets the confidence policy.
func (o Options) WithConfidence(mode ConfidenceMode) Options {
	o.Confidence = mode
	return o
}

// WithEnhance replaces the enhancement options.
func (o Options) WithEnhance(opts enhance.Options) Options {
	o.Enhance = opts
	return o
}
