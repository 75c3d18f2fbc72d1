// Package mrz reads the TD1 machine readable zone printed on the back of a chip-based CCCD.
//
//	IDVNM2010001234012010001234<<8   document number, check digit, full 12-digit number
//	9001014M3001015VNM<<<<<<<<<<<6   birth, check, sex, expiry, check, nationality
//	NGUYEN<<VAN<A<<<<<<<<<<<<<<<<<   surname << given names
package mrz

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// Confidence is reported for records taken from the MRZ.
const Confidence = 0.95

const minLineLength = 30

var (
	nonMRZ     = regexp.MustCompile(`[^A-Z0-9<]`)
	mrzOnly    = regexp.MustCompile(`^[A-Z0-9<]+$`)
	twelveRun  = regexp.MustCompile(`\d{12}`)
	digitsOnly = regexp.MustCompile(`^\d+$`)
	nonLetter  = regexp.MustCompile(`[^A-Z]`)
	nonName    = regexp.MustCompile(`[^A-Z<]`)
	spaces     = regexp.MustCompile(`\s+`)

	// Check digits are optional so OCR output that dropped them still parses.
	datesLine = regexp.MustCompile(`(\d{6})(\d)?([MFN])(\d{6})(\d)?([A-Z<]{3})?`)
)

// CheckStatus summarises the ICAO check digits found in the zone.
type CheckStatus string

const (
	ChecksUnavailable CheckStatus = "unavailable"
	ChecksVerified    CheckStatus = "verified"
	ChecksFailed      CheckStatus = "failed"
)

// Record is what the zone yielded. Any field may be empty.
type Record struct {
	DocumentNumber string
	FullName       string
	DateOfBirth    string // DD/MM/YYYY
	Gender         string
	ExpiryDate     string // DD/MM/YYYY
	Nationality    string
	Checks         CheckStatus
	Lines          []string
}

// Usable reports whether the record may short-circuit regex extraction.
func (r *Record) Usable() bool {
	return r != nil && r.DocumentNumber != "" && r.FullName != ""
}

// Fields converts the record for merging. Absent values stay empty.
func (r *Record) Fields() models.Fields {
	var f models.Fields
	if r == nil {
		return f
	}
	f.Set(models.FieldCCCDNumber, r.DocumentNumber)
	f.Set(models.FieldFullName, r.FullName)
	f.Set(models.FieldDateOfBirth, r.DateOfBirth)
	f.Set(models.FieldGender, r.Gender)
	f.Set(models.FieldNationality, r.Nationality)
	return f
}

// CandidateLines returns the cleaned lines of text that look like MRZ lines. A line
// qualifies on a marker, or when nothing but whitespace had to be stripped from it.
func CandidateLines(text string) []string {
	var out []string
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		upper := strings.Join(strings.Fields(strings.ToUpper(raw)), "")
		line := nonMRZ.ReplaceAllString(upper, "")
		if len(line) < minLineLength {
			continue
		}
		if strings.Contains(line, "<<") ||
			strings.HasPrefix(line, "ID") ||
			strings.HasPrefix(line, "VNM") ||
			twelveRun.MatchString(line) ||
			mrzOnly.MatchString(upper) {
			out = append(out, line)
		}
	}
	return out
}

// Parse reads an MRZ out of recognized text. It returns nil when fewer than two lines
// qualify or none of them yields a number, a birth date or a name.
func Parse(text string) *Record {
	lines := CandidateLines(text)
	if len(lines) < 2 {
		return nil
	}

	rec := &Record{Lines: lines, Nationality: models.DefaultNationality, Checks: ChecksUnavailable}
	checks := make([]bool, 0, 3)

	for _, line := range lines {
		if !strings.HasPrefix(line, "ID") && !strings.HasPrefix(line, "VNM") {
			continue
		}
		if number, ok := documentNumber(line); ok {
			rec.DocumentNumber = number
			if strings.HasPrefix(line, "ID") && len(line) >= 15 && line[14] != '<' {
				checks = append(checks, Verify(line[5:14], line[14]))
			}
			break
		}
	}

	for _, line := range lines {
		m := datesLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec.DateOfBirth = expandDate(m[1], true)
		rec.Gender = sexToGender(m[3])
		rec.ExpiryDate = expandDate(m[4], false)
		if m[2] != "" {
			checks = append(checks, Verify(m[1], m[2][0]))
		}
		if m[5] != "" {
			checks = append(checks, Verify(m[4], m[5][0]))
		}
		if nat := strings.Trim(m[6], "<"); nat != "" {
			rec.Nationality = nationality(nat)
		}
		break
	}

	for _, line := range lines {
		if name := parseName(line); name != "" {
			rec.FullName = name
			break
		}
	}

	if rec.DocumentNumber == "" && rec.DateOfBirth == "" && rec.FullName == "" {
		return nil
	}

	if len(checks) > 0 {
		rec.Checks = ChecksVerified
		for _, ok := range checks {
			if !ok {
				rec.Checks = ChecksFailed
				break
			}
		}
	}
	return rec
}

// ParseSides tries the front text first and falls back to the back.
func ParseSides(front, back string) *Record {
	if rec := Parse(front); rec.Usable() {
		return rec
	}
	return Parse(back)
}

// documentNumber prefers the optional-data slot of TD1 line one, which holds the full
// 12-digit number, and otherwise takes the first 12-digit run.
func documentNumber(line string) (string, bool) {
	if len(line) >= 27 && digitsOnly.MatchString(line[15:27]) {
		return line[15:27], true
	}
	if m := twelveRun.FindString(line); m != "" {
		return m, true
	}
	return "", false
}

func parseName(line string) string {
	parts := strings.Split(line, "<<")
	if len(parts) < 2 {
		return ""
	}
	surname := nonLetter.ReplaceAllString(parts[0], "")
	given := nonName.ReplaceAllString(parts[1], "")
	given = strings.TrimSpace(spaces.ReplaceAllString(strings.ReplaceAll(given, "<", " "), " "))
	if surname == "" || given == "" {
		return ""
	}
	return surname + " " + given
}

// expandDate turns YYMMDD into DD/MM/YYYY. Birth years below 50 are 20xx, the rest
// 19xx. Expiry years are always 20xx.
func expandDate(yymmdd string, birth bool) string {
	yy := int(yymmdd[0]-'0')*10 + int(yymmdd[1]-'0')
	year := 2000 + yy
	if birth && yy >= 50 {
		year = 1900 + yy
	}
	return fmt.Sprintf("%s/%s/%04d", yymmdd[4:6], yymmdd[2:4], year)
}

func sexToGender(code string) string {
	if code == "F" {
		return models.GenderFemale
	}
	return models.GenderMale
}

func nationality(code string) string {
	if code == "VNM" {
		return models.DefaultNationality
	}
	return code
}
