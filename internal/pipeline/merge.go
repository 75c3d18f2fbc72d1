package pipeline

import (
	"github.com/anime-shed/cccd-inspector-go/internal/extractor"
	"github.com/anime-shed/cccd-inspector-go/internal/mrz"
	"github.com/anime-shed/cccd-inspector-go/internal/postprocess"
	"github.com/anime-shed/cccd-inspector-go/internal/qrcode"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const (
	sourceMRZ = "mrz"
	sourceQR  = "qr"
)

const mrzCheckFailed = "MRZ check digits do not verify"

// merge accumulates fields by precedence: a value already set is never replaced, so
// sources must be applied MRZ first, then QR, then regex.
type merge struct {
	fields  models.Fields
	sources map[string]string

	mrz *mrz.Record
	qr  *qrcode.Payload
}

func newMerge() *merge {
	return &merge{sources: make(map[string]string)}
}

func (m *merge) apply(fields models.Fields, source func(models.FieldName) string) {
	for _, name := range models.AllFields {
		if m.fields.Has(name) || !fields.Has(name) {
			continue
		}
		m.fields.Set(name, fields.Get(name))
		m.sources[string(name)] = source(name)
	}
}

func (m *merge) applyResult(res extractor.Result, side extractor.Side) {
	m.apply(res.Fields, func(name models.FieldName) string {
		return "regex:" + side.String() + ":" + res.Sources[name]
	})
}

func (m *merge) complete() bool {
	return m.fields.Count() == len(models.AllFields)
}

func (m *merge) source() models.Source {
	switch {
	case m.mrz.Usable():
		return models.SourceMRZ
	case m.qr != nil:
		return models.SourceQRCode
	case m.fields.IsEmpty():
		return models.SourceNone
	}
	return models.SourceRegex
}

// structuredSources applies the MRZ and, when enabled, the card QR code. A partial MRZ
// record still contributes the fields it has.
func (o *Orchestrator) structuredSources(r *run) *merge {
	m := newMerge()
	back := ""
	if r.back != nil {
		back = r.back.text.Text
	}
	if rec := mrz.ParseSides(r.front.text.Text, back); rec != nil {
		m.mrz = rec
		m.apply(wellFormed(rec.Fields()), func(models.FieldName) string { return sourceMRZ })
		r.log.WithField("usable", rec.Usable()).WithField("checks", rec.Checks).Debug("MRZ parsed")
	}

	if o.opts.UseQRCode {
		if payload, ok := qrcode.Read(o.qr, r.front.raw); ok {
			m.qr = payload
			m.apply(wellFormed(payload.Fields()), func(models.FieldName) string { return sourceQR })
			r.log.Debug("Card QR code decoded")
		}
	}
	return m
}

// wellFormed drops values the validator would reject, leaving those fields open to
// the sources applied after.
func wellFormed(fields models.Fields) models.Fields {
	out, _ := postprocess.Process(fields)
	return out
}

// regexFallback fills the fields the structured sources left empty, front before back.
func (o *Orchestrator) regexFallback(r *run, m *merge) {
	m.applyResult(o.extractor.Extract(r.front.text.Text, extractor.SideFront), extractor.SideFront)
	if r.back != nil {
		m.applyResult(o.extractor.Extract(r.back.text.Text, extractor.SideBack), extractor.SideBack)
	}
}

func (o *Orchestrator) finish(r *run, m *merge) *models.PipelineResult {
	fields, report := postprocess.Process(m.fields)
	if m.mrz != nil && m.mrz.Checks == mrz.ChecksFailed {
		report.ValidationErrors = append(report.ValidationErrors, mrzCheckFailed)
		report.NeedsManualReview = true
	}
	for name := range report.Rejected {
		delete(m.sources, name)
	}
	if len(m.sources) > 0 {
		r.diag.FieldSources = m.sources
	}

	return &models.PipelineResult{
		ExtractedData:   fields,
		ConfidenceScore: o.confidence(r, m, fields),
		FormatValid:     report.FormatValid,
		MissingFields:   report.CriticalMissing,
		Source:          m.source(),
		Validation:      &report,
	}
}

// confidence is bounded to [0,1]. A usable MRZ scores mrz.Confidence in either mode.
func (o *Orchestrator) confidence(r *run, m *merge, fields models.Fields) float64 {
	if m.mrz.Usable() {
		return mrz.Confidence
	}
	if o.opts.Confidence == ConfidenceEngine {
		if r.back == nil {
			return r.front.text.Confidence
		}
		return (r.front.text.Confidence + r.back.text.Confidence) / 2
	}
	found := 0
	for _, name := range models.CriticalFields {
		if fields.Has(name) {
			found++
		}
	}
	return float64(found) / float64(len(models.CriticalFields))
}
