package models

// RecognitionResult is the fixed contract of the text recognition adapter.
// Confidence is always within [0,1].
type RecognitionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Empty reports whether nothing was recognized.
func (r RecognitionResult) Empty() bool {
	return r.Text == ""
}

// ValidationReport describes the outcome of post-processing an extracted record.
type ValidationReport struct {
	FormatValid       bool              `json:"format_valid"`
	MissingFields     []FieldName       `json:"missing_fields"`
	CriticalMissing   []FieldName       `json:"critical_missing"`
	NeedsManualReview bool              `json:"needsManualReview"`
	ValidationErrors  []string          `json:"validationErrors"`
	Rejected          map[string]string `json:"rejected_values,omitempty"`
}

// Source names the extraction path that produced the record.
type Source string

const (
	SourceNone       Source = "none"
	SourceMRZ        Source = "mrz"
	SourceQRCode     Source = "qr"
	SourceRegex      Source = "regex"
	SourceNumberOnly Source = "number_only"
)

// PipelineResult is the record handed to the persistence and verification collaborators.
type PipelineResult struct {
	ExtractedData   Fields            `json:"extracted_data"`
	ConfidenceScore float64           `json:"confidence_score"`
	FormatValid     bool              `json:"format_valid"`
	MissingFields   []FieldName       `json:"missing_fields"`
	Source          Source            `json:"source,omitempty"`
	Validation      *ValidationReport `json:"validation,omitempty"`
	Diagnostics     *Diagnostics      `json:"diagnostics,omitempty"`
}

// Diagnostics carries per-run details that do not influence the result.
type Diagnostics struct {
	RequestID         string            `json:"request_id,omitempty"`
	Trace             []string          `json:"trace"`
	FrontQuality      *QualityReport    `json:"front_quality,omitempty"`
	BackQuality       *QualityReport    `json:"back_quality,omitempty"`
	EnhancementStages []string          `json:"enhancement_stages,omitempty"`
	FrontConfidence   float64           `json:"front_confidence"`
	BackConfidence    float64           `json:"back_confidence,omitempty"`
	FieldSources      map[string]string `json:"field_sources,omitempty"`
	DurationMs        int64             `json:"duration_ms"`

	// Recognized text is PII; it stays in-process for accuracy scoring.
	FrontText string `json:"-"`
	BackText  string `json:"-"`
}
