package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
)

var headerPhrases = []string{
	"CỘNG HÒA",
	"XÃ HỘI",
	"CHỦ NGHĨA",
	"CÔNG DÂN",
	"CĂN CƯỚC",
	"ĐỘC LẬP",
	"HẠNH PHÚC",
	"VIỆT NAM",
}

var headerWords = []string{
	"IDENTITY",
	"CARD",
	"REPUBLIC",
	"SOCIALIST",
	"CITIZEN",
	"CỘNG",
}

// fuzzyMinRunes is the shortest header word matched with one edit of tolerance.
const fuzzyMinRunes = 5

// isHeaderLine reports whether line belongs to the card title block. Long header words
// also match with a single OCR edit, so IDENTITV is still a header.
func isHeaderLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, p := range headerPhrases {
		if strings.Contains(upper, p) {
			return true
		}
	}
	for _, w := range strings.Fields(upper) {
		for _, h := range headerWords {
			if w == h {
				return true
			}
			if utf8.RuneCountInString(h) >= fuzzyMinRunes && levenshtein.Distance(w, h) <= 1 {
				return true
			}
		}
	}
	return false
}
