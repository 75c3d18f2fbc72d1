package qrcode

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const separator = "|"

var (
	cccdPattern = regexp.MustCompile(`^\d{12}$`)
	compactDate = regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})$`)
)

// Payload is the card QR content:
//
//	cccd|legacy id|full name|ddmmyyyy|gender|residence|ddmmyyyy
type Payload struct {
	CCCDNumber  string
	LegacyID    string // nine digit CMND, often empty
	FullName    string
	DateOfBirth string // DD/MM/YYYY
	Gender      string
	Residence   string
	IssueDate   string // DD/MM/YYYY
}

// ParsePayload splits a card QR payload. Anything that does not start with a twelve
// digit number is rejected. Dates that do not match ddmmyyyy are dropped.
func ParsePayload(text string) (*Payload, bool) {
	parts := strings.Split(norm.NFC.String(strings.TrimSpace(text)), separator)
	if len(parts) < 6 {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if !cccdPattern.MatchString(parts[0]) {
		return nil, false
	}
	p := &Payload{
		CCCDNumber:  parts[0],
		LegacyID:    parts[1],
		FullName:    parts[2],
		DateOfBirth: expandDate(parts[3]),
		Gender:      canonicalGender(parts[4]),
		Residence:   parts[5],
	}
	if len(parts) > 6 {
		p.IssueDate = expandDate(parts[6])
	}
	return p, true
}

// Fields converts the payload for merging.
func (p *Payload) Fields() models.Fields {
	var f models.Fields
	if p == nil {
		return f
	}
	f.Set(models.FieldCCCDNumber, p.CCCDNumber)
	f.Set(models.FieldFullName, p.FullName)
	f.Set(models.FieldDateOfBirth, p.DateOfBirth)
	f.Set(models.FieldGender, p.Gender)
	f.Set(models.FieldPlaceOfResidence, p.Residence)
	f.Set(models.FieldIssueDate, p.IssueDate)
	return f
}

func expandDate(s string) string {
	m := compactDate.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1] + "/" + m[2] + "/" + m[3]
}

func canonicalGender(s string) string {
	switch strings.ToLower(s) {
	case "nam":
		return models.GenderMale
	case "nữ":
		return models.GenderFemale
	}
	return ""
}
