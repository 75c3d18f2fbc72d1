package models

// ScanRequest is the JSON form of an OCR request. Multipart uploads carry the same
// options as form values.
type ScanRequest struct {
	FrontURL     string  `json:"front_url" binding:"required"`
	BackURL      string  `json:"back_url,omitempty"`
	NumberOnly   bool    `json:"number_only,omitempty"`
	ExpectedText string  `json:"expected_text,omitempty"`
	Region       *Region `json:"region,omitempty"`
}

// Region is a selection rectangle in source image pixels.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// QualityRequest asks for a quality report of a referenced image.
type QualityRequest struct {
	URL string `json:"url" binding:"required"`
}

// Accuracy compares recognized text with caller-supplied expected text.
type Accuracy struct {
	WER        float64 `json:"word_error_rate"`
	CER        float64 `json:"character_error_rate"`
	MatchScore float64 `json:"match_score"`
}

// ScanResponse wraps a pipeline result for REST callers.
type ScanResponse struct {
	PipelineResult
	Accuracy *Accuracy `json:"accuracy,omitempty"`
	Cached   bool      `json:"cached,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
