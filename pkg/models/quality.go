package models

// Brightness classifies the exposure of a raw capture.
type Brightness string

const (
	BrightnessTooDark   Brightness = "tooDark"
	BrightnessTooBright Brightness = "tooBright"
	BrightnessGood      Brightness = "good"
)

// BlurLevel buckets the Laplacian energy of a capture.
type BlurLevel string

const (
	BlurLevelBlurry     BlurLevel = "blurry"
	BlurLevelAcceptable BlurLevel = "acceptable"
	BlurLevelSharp      BlurLevel = "sharp"
)

// QualityReport is derived once per raw image and never modified afterwards.
type QualityReport struct {
	IsBlurry          bool       `json:"isBlurry"`
	BlurVariance      float64    `json:"blurVariance"`
	BlurLevel         BlurLevel  `json:"blurLevel"`
	Brightness        Brightness `json:"brightness"`
	AvgBrightness     float64    `json:"avgBrightness"`
	DarkRatio         float64    `json:"darkRatio"`
	BrightRatio       float64    `json:"brightRatio"`
	Contrast          float64    `json:"contrast"`
	HasMissingCorners bool       `json:"hasMissingCorners"`

	Width           int     `json:"width"`
	Height          int     `json:"height"`
	IsLowResolution bool    `json:"isLowResolution"`
	ReadinessScore  float64 `json:"readinessScore"` // 0-100

	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}
