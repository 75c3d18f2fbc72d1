package recognizer

import "github.com/otiai10/gosseract/v2"

// PageSegMode is the layout assumption handed to the engine.
type PageSegMode int

const (
	PSMAuto PageSegMode = iota
	PSMSingleBlock
	PSMSingleLine
)

func (m PageSegMode) tesseract() gosseract.PageSegMode {
	switch m {
	case PSMSingleBlock:
		return gosseract.PSM_SINGLE_BLOCK
	case PSMSingleLine:
		return gosseract.PSM_SINGLE_LINE
	default:
		return gosseract.PSM_AUTO
	}
}

func (m PageSegMode) String() string {
	switch m {
	case PSMSingleBlock:
		return "single_block"
	case PSMSingleLine:
		return "single_line"
	default:
		return "auto"
	}
}

const (
	DefaultLanguage      = "vie"
	DefaultDigitLanguage = "eng"
	DigitWhitelist       = "0123456789"
)

// Options configures one recognition call.
type Options struct {
	Languages   []string
	PageSegMode PageSegMode
	Whitelist   string // empty means unrestricted
}

// GeneralOptions is full-field extraction: document language, block segmentation, any character.
func GeneralOptions(lang string) Options {
	if lang == "" {
		lang = DefaultLanguage
	}
	return Options{
		Languages:   []string{lang},
		PageSegMode: PSMSingleBlock,
	}
}

// DigitOptions is the fast number-only mode: latin language, single line, digits only.
func DigitOptions(lang string) Options {
	if lang == "" {
		lang = DefaultDigitLanguage
	}
	return Options{
		Languages:   []string{lang},
		PageSegMode: PSMSingleLine,
		Whitelist:   DigitWhitelist,
	}
}
