// Package postprocess corrects OCR confusions in extracted fields and validates them.
package postprocess

import (
	"fmt"
	"strings"
	"unicode"
)

// Letters read in place of a digit. Loose rules fire when either neighbour is a digit,
// flanked rules only between two digits.
var (
	looseConfusions = map[rune]rune{
		'O': '0', 'o': '0',
		'I': '1', 'l': '1', '|': '1',
	}
	flankedConfusions = map[rune]rune{
		'S': '5', 's': '5',
		'Z': '2', 'z': '2',
		'B': '8', 'b': '8',
	}
)

// CorrectDigits fixes letter/digit confusions in a single left-to-right pass. Every rule
// looks at the neighbours in the original string, so corrections never cascade.
func CorrectDigits(s string) string {
	in := []rune(s)
	out := make([]rune, len(in))
	isDigit := func(i int) bool {
		return i >= 0 && i < len(in) && unicode.IsDigit(in[i])
	}
	for i, r := range in {
		out[i] = r
		before, after := isDigit(i-1), isDigit(i+1)
		if d, ok := looseConfusions[r]; ok && (before || after) {
			out[i] = d
		} else if d, ok := flankedConfusions[r]; ok && before && after {
			out[i] = d
		}
	}
	return string(out)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CCCDCheck is the outcome of validating a citizen identity number.
type CCCDCheck struct {
	Valid bool
	Fixed string // corrected digits, or the digit residue when invalid
	Error string
}

// ValidateCCCDNumber corrects and checks a citizen identity number. It never fails: any
// input yields either twelve digits or an error with the residue.
func ValidateCCCDNumber(s string) CCCDCheck {
	if strings.TrimSpace(s) == "" {
		return CCCDCheck{Error: "CCCD number is missing"}
	}
	digits := digitsOnly(CorrectDigits(s))
	if len(digits) != 12 {
		return CCCDCheck{Fixed: digits, Error: fmt.Sprintf("CCCD must be 12 digits, got %d", len(digits))}
	}
	return CCCDCheck{Valid: true, Fixed: digits}
}
