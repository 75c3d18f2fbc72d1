package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Card title phrases removed before number matching so their letters never pair with digits.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM`),
	regexp.MustCompile(`(?i)C[ỘÒO]NG HÒA XÃ HỘI`),
	regexp.MustCompile(`(?i)CĂN CƯỚC CÔNG DÂN`),
	regexp.MustCompile(`(?i)SOCIALIST REPUBLIC(?: OF VIET ?NAM)?`),
	regexp.MustCompile(`(?i)Citizen Identity Card`),
	regexp.MustCompile(`(?i)ĐỘC LẬP\s*-\s*TỰ DO\s*-\s*HẠNH PHÚC`),
}

// Document is recognized text prepared for extraction.
type Document struct {
	Text  string   // NFC normalized
	Clean string   // Text without card title phrases
	Lines []string // trimmed, non-empty lines of Text
}

// NewDocument normalizes text to NFC so composed Vietnamese letters match the patterns.
func NewDocument(text string) *Document {
	text = norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	clean := text
	for _, re := range headerPatterns {
		clean = re.ReplaceAllString(clean, "")
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return &Document{Text: text, Clean: clean, Lines: lines}
}
