// Package pipeline sequences quality check, enhancement, recognition, MRZ parsing, regex
// fallback and validation into one stateless call per card.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/cccd-inspector-go/internal/enhance"
	"github.com/anime-shed/cccd-inspector-go/internal/extractor"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/internal/observer"
	"github.com/anime-shed/cccd-inspector-go/internal/postprocess"
	"github.com/anime-shed/cccd-inspector-go/internal/qrcode"
	"github.com/anime-shed/cccd-inspector-go/internal/quality"
	"github.com/anime-shed/cccd-inspector-go/internal/recognizer"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

var (
	ErrNoImage    = errors.New("pipeline: no front image")
	ErrEmptyImage = errors.New("pipeline: image has no pixels")
)

// Request is one card to scan. Back is optional.
type Request struct {
	ID         string
	Front      image.Image
	Back       image.Image
	NumberOnly bool
	Region     image.Rectangle // selection on the front image, zero keeps it whole
}

// Pipeline is what callers depend on.
type Pipeline interface {
	Run(ctx context.Context, req Request) (*models.PipelineResult, error)
	RunBatch(ctx context.Context, reqs []Request) []BatchResult
	Options() Options
}

// Orchestrator is the default Pipeline. It holds configuration and collaborators only,
// so one instance serves concurrent runs.
type Orchestrator struct {
	engine    recognizer.Engine
	gate      quality.Gate
	extractor *extractor.Extractor
	qr        qrcode.Decoder
	events    observer.Publisher
	opts      Options
}

var _ Pipeline = (*Orchestrator)(nil)

// Component overrides one collaborator of an Orchestrator.
type Component func(*Orchestrator)

func WithGate(g quality.Gate) Component {
	return func(o *Orchestrator) { o.gate = g }
}

func WithExtractor(e *extractor.Extractor) Component {
	return func(o *Orchestrator) { o.extractor = e }
}

func WithQRDecoder(d qrcode.Decoder) Component {
	return func(o *Orchestrator) { o.qr = d }
}

func WithPublisher(p observer.Publisher) Component {
	return func(o *Orchestrator) { o.events = p }
}

// New creates an orchestrator around engine.
func New(engine recognizer.Engine, opts Options, components ...Component) *Orchestrator {
	if opts.Confidence == "" {
		opts.Confidence = ConfidenceFields
	}
	o := &Orchestrator{
		engine:    engine,
		gate:      quality.NewGate(quality.DefaultOptions(), nil),
		extractor: extractor.New(),
		qr:        qrcode.NewDecoder(),
		events:    observer.Nop{},
		opts:      opts,
	}
	for _, c := range components {
		c(o)
	}
	return o
}

func (o *Orchestrator) Options() Options {
	return o.opts
}

// side carries the per-image intermediate results of a run.
type side struct {
	name     string
	raw      image.Image
	enhanced *enhance.Result
	text     models.RecognitionResult
}

// run is the mutable working set of one call.
type run struct {
	req     Request
	session *Session
	front   *side
	back    *side
	diag    *models.Diagnostics
	log     *logrus.Entry
}

// Run scans one card. Expected failures (blurry capture, no text, no MRZ) yield a result
// with absent fields; only unreadable input and engine faults return an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*models.PipelineResult, error) {
	if err := checkImages(req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r := &run{
		req:     req,
		session: newSession(req.ID),
		front:   &side{name: "front", raw: req.Front},
		diag:    &models.Diagnostics{RequestID: req.ID},
		log:     logger.Component("pipeline").WithField("request_id", req.ID),
	}
	if req.Back != nil {
		r.back = &side{name: "back", raw: req.Back}
	}
	o.events.Publish(ctx, observer.Event{Type: observer.PipelineStarted, RequestID: req.ID, Success: true})

	res, err := o.execute(ctx, r)
	if err != nil {
		r.log.WithError(err).WithField("state", r.session.State).Error("Pipeline failed")
		o.events.Publish(ctx, observer.Event{
			Type:      observer.PipelineFailed,
			RequestID: req.ID,
			Stage:     string(r.session.State),
			Duration:  r.session.Elapsed(),
			Error:     err.Error(),
		})
		return nil, err
	}
	if !r.session.Done() {
		return nil, fmt.Errorf("pipeline stopped in state %s", r.session.State)
	}

	r.diag.Trace = r.session.trace()
	r.diag.DurationMs = r.session.Elapsed().Milliseconds()
	res.Diagnostics = r.diag
	r.log.WithFields(logrus.Fields{
		"source":       res.Source,
		"confidence":   res.ConfidenceScore,
		"format_valid": res.FormatValid,
		"fields":       res.ExtractedData.Present(),
		"duration_ms":  r.diag.DurationMs,
	}).Info("Pipeline completed")
	o.events.Publish(ctx, observer.Event{
		Type:      observer.PipelineCompleted,
		RequestID: req.ID,
		Duration:  r.session.Elapsed(),
		Success:   true,
		Metadata: map[string]interface{}{
			observer.MetaConfidence:  res.ConfidenceScore,
			observer.MetaFormatValid: res.FormatValid,
			observer.MetaSource:      string(res.Source),
			observer.MetaFields:      res.ExtractedData.Count(),
		},
	})
	return res, nil
}

func checkImages(req Request) error {
	if req.Front == nil {
		return ErrNoImage
	}
	if req.Front.Bounds().Empty() {
		return fmt.Errorf("front: %w", ErrEmptyImage)
	}
	if req.Back != nil && req.Back.Bounds().Empty() {
		return fmt.Errorf("back: %w", ErrEmptyImage)
	}
	return nil
}

func (o *Orchestrator) advance(ctx context.Context, r *run, next State) error {
	prev := r.session.State
	elapsed, err := r.session.Advance(next)
	if err != nil {
		return err
	}
	if prev != "" {
		o.events.Publish(ctx, observer.Event{
			Type:      observer.StageCompleted,
			RequestID: r.req.ID,
			Stage:     string(prev),
			Duration:  elapsed,
			Success:   true,
		})
	}
	if next == StateDone {
		return nil
	}
	return ctx.Err()
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (*models.PipelineResult, error) {
	if err := o.advance(ctx, r, StateQualityCheck); err != nil {
		return nil, err
	}
	if !o.checkQuality(r) {
		r.log.Info("Capture rejected by quality gate")
		if err := o.advance(ctx, r, StateDone); err != nil {
			return nil, err
		}
		return emptyResult(), nil
	}

	if err := o.advance(ctx, r, StateEnhance); err != nil {
		return nil, err
	}
	if err := o.enhance(r); err != nil {
		return nil, err
	}

	if err := o.advance(ctx, r, StateRecognize); err != nil {
		return nil, err
	}
	if err := o.recognize(ctx, r); err != nil {
		return nil, err
	}

	if r.req.NumberOnly {
		return o.numberOnly(ctx, r)
	}

	if err := o.advance(ctx, r, StateMRZ); err != nil {
		return nil, err
	}
	m := o.structuredSources(r)

	if !m.complete() {
		if err := o.advance(ctx, r, StateRegex); err != nil {
			return nil, err
		}
		o.regexFallback(r, m)
	}

	if err := o.advance(ctx, r, StateValidate); err != nil {
		return nil, err
	}
	res := o.finish(r, m)
	if err := o.advance(ctx, r, StateDone); err != nil {
		return nil, err
	}
	return res, nil
}

// checkQuality records the gate reports and tells whether the run may continue.
func (o *Orchestrator) checkQuality(r *run) bool {
	front := o.gate.Inspect(r.front.raw)
	r.diag.FrontQuality = &front
	passed := front.Passed
	if r.back != nil {
		back := o.gate.Inspect(r.back.raw)
		r.diag.BackQuality = &back
		passed = passed && back.Passed
	}
	if !passed {
		r.log.WithField("issues", front.Issues).Debug("Capture below quality thresholds")
	}
	return passed || !o.opts.StrictQuality
}

func (o *Orchestrator) enhanceOptions(numberOnly bool) enhance.Options {
	opts := o.opts.Enhance
	if numberOnly && opts.Mode != enhance.ModeLightweight {
		opts = enhance.DigitOptions().WithCLAHE(opts.ClipLimit, opts.TileSize)
	}
	return opts
}

func (o *Orchestrator) enhance(r *run) error {
	opts := o.enhanceOptions(r.req.NumberOnly)
	res, err := enhance.NewEnhancer(opts.WithRegion(r.req.Region)).Enhance(r.front.raw)
	if err != nil {
		return fmt.Errorf("enhance front: %w", err)
	}
	r.front.enhanced = res
	r.diag.EnhancementStages = res.Stages

	if r.back != nil && !r.req.NumberOnly {
		res, err := enhance.NewEnhancer(opts).Enhance(r.back.raw)
		if err != nil {
			return fmt.Errorf("enhance back: %w", err)
		}
		r.back.enhanced = res
	}
	return nil
}

// recognize runs both sides concurrently and joins before returning.
func (o *Orchestrator) recognize(ctx context.Context, r *run) error {
	opts := recognizer.GeneralOptions(o.opts.Language)
	if r.req.NumberOnly {
		opts = recognizer.DigitOptions(o.opts.DigitLanguage)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []*side{r.front, r.back} {
		if s == nil || s.enhanced == nil {
			continue
		}
		s := s
		g.Go(func() error {
			start := time.Now()
			res, err := o.engine.Recognize(gctx, s.enhanced.Image, opts)
			if err != nil {
				return fmt.Errorf("recognize %s: %w", s.name, err)
			}
			s.text = res
			if res.Empty() {
				r.log.WithField("side", s.name).Info("No text recognized")
			}
			r.log.WithFields(logrus.Fields{
				"side":        s.name,
				"engine":      o.engine.Name(),
				"confidence":  res.Confidence,
				"chars":       len(res.Text),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debug("Recognized text")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.diag.FrontConfidence = r.front.text.Confidence
	r.diag.FrontText = r.front.text.Text
	if r.back != nil {
		r.diag.BackConfidence = r.back.text.Confidence
		r.diag.BackText = r.back.text.Text
	}
	return nil
}

func (o *Orchestrator) numberOnly(ctx context.Context, r *run) (*models.PipelineResult, error) {
	if err := o.advance(ctx, r, StateRegex); err != nil {
		return nil, err
	}
	var fields models.Fields
	if number, ok := extractor.ExtractNumber(r.front.text.Text); ok {
		fields.CCCDNumber = number
		r.diag.FieldSources = map[string]string{string(models.FieldCCCDNumber): "number_only"}
	}

	if err := o.advance(ctx, r, StateValidate); err != nil {
		return nil, err
	}
	fields, report := postprocess.Process(fields)
	res := &models.PipelineResult{
		ExtractedData: fields,
		MissingFields: []models.FieldName{},
		Source:        models.SourceNone,
		Validation:    &report,
	}
	if fields.Has(models.FieldCCCDNumber) {
		res.ConfidenceScore = 1
		res.FormatValid = true
		res.Source = models.SourceNumberOnly
	} else {
		res.MissingFields = append(res.MissingFields, models.FieldCCCDNumber)
	}

	if err := o.advance(ctx, r, StateDone); err != nil {
		return nil, err
	}
	return res, nil
}

func emptyResult() *models.PipelineResult {
	fields, report := postprocess.Process(models.Fields{})
	return &models.PipelineResult{
		ExtractedData: fields,
		MissingFields: report.CriticalMissing,
		Source:        models.SourceNone,
		Validation:    &report,
	}
}
