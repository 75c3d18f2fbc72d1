package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// Tier ranks how a strategy finds its value. Labelled matches always run before
// positional guesses for the same field.
type Tier int

const (
	TierLabeled Tier = iota
	TierPositional
)

func (t Tier) String() string {
	if t == TierPositional {
		return "positional"
	}
	return "labeled"
}

// Strategy is one attempt at one field.
type Strategy struct {
	Field   models.FieldName
	Name    string
	Tier    Tier
	Extract func(doc *Document) (string, bool)
}

// FrontStrategies is the ordered attempt list for the front of the card.
var FrontStrategies = []Strategy{
	{models.FieldCCCDNumber, "cccd_labeled", TierLabeled, cccdFromLabel},
	{models.FieldCCCDNumber, "cccd_bare", TierPositional, cccdFromBareToken},
	{models.FieldFullName, "name_same_line", TierLabeled, nameSameLine},
	{models.FieldFullName, "name_next_line", TierLabeled, nameNextLine},
	{models.FieldFullName, "name_uppercase_line", TierPositional, nameUppercaseLine},
	{models.FieldDateOfBirth, "dob_labeled", TierLabeled, dobFromLabel},
	{models.FieldDateOfBirth, "dob_bare", TierPositional, firstBareDate},
	{models.FieldGender, "gender_labeled", TierLabeled, genderFromLabel},
	{models.FieldGender, "gender_standalone", TierPositional, genderStandaloneWord},
	{models.FieldNationality, "nationality_labeled", TierLabeled, labeledValue(nationalityLabel, false)},
	{models.FieldPlaceOfOrigin, "origin_labeled", TierLabeled, labeledValue(originLabel, false)},
	{models.FieldPlaceOfResidence, "residence_labeled", TierLabeled, labeledValue(residenceLabel, true)},
}

// BackStrategies is the ordered attempt list for the back of the card.
var BackStrategies = []Strategy{
	{models.FieldPlaceOfResidence, "residence_labeled", TierLabeled, labeledValue(residenceLabel, true)},
	{models.FieldIssueDate, "issue_date_labeled", TierLabeled, issueDateFromLabel},
	{models.FieldIssueDate, "issue_date_bare", TierPositional, firstBareDate},
	{models.FieldIssuingAuthority, "authority_labeled", TierLabeled, labeledValue(authorityLabel, false)},
	{models.FieldIssuingAuthority, "authority_line", TierPositional, authorityFromLine},
}

func cccdFromLabel(doc *Document) (string, bool) {
	if m := cccdLabeled.FindStringSubmatch(doc.Clean); m != nil {
		return m[1], true
	}
	return "", false
}

func cccdFromBareToken(doc *Document) (string, bool) {
	if m := cccdBare.FindStringSubmatch(doc.Clean); m != nil {
		return m[1], true
	}
	return "", false
}

// nameSameLine takes the uppercase tokens that follow the last name label on its line.
func nameSameLine(doc *Document) (string, bool) {
	for _, line := range doc.Lines {
		locs := nameLabel.FindAllStringIndex(line, -1)
		if locs == nil {
			continue
		}
		rest := strings.TrimLeft(line[locs[len(locs)-1][1]:], ": /\t")
		var tokens []string
		for _, tok := range strings.Fields(rest) {
			if !upperWord.MatchString(tok) {
				break
			}
			tokens = append(tokens, tok)
		}
		if len(tokens) >= 2 {
			return strings.Join(tokens, " "), true
		}
	}
	return "", false
}

func nameNextLine(doc *Document) (string, bool) {
	for i, line := range doc.Lines {
		if !nameLabel.MatchString(line) || i+1 >= len(doc.Lines) {
			continue
		}
		next := doc.Lines[i+1]
		if upperLine.MatchString(next) && utf8.RuneCountInString(next) > 5 {
			return collapse(next), true
		}
	}
	return "", false
}

func nameUppercaseLine(doc *Document) (string, bool) {
	for _, line := range doc.Lines {
		if isHeaderLine(line) || anyLabel.MatchString(line) || !upperLine.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		n := utf8.RuneCountInString(line)
		if len(words) >= 2 && len(words) <= 5 && n >= 8 && n <= 30 {
			return strings.Join(words, " "), true
		}
	}
	return "", false
}

func dobFromLabel(doc *Document) (string, bool) {
	return firstValidDate(dobLabeled, doc.Text, true)
}

func issueDateFromLabel(doc *Document) (string, bool) {
	return firstValidDate(issueLabeled, doc.Text, false)
}

func firstBareDate(doc *Document) (string, bool) {
	return firstValidDate(dateBare, doc.Text, false)
}

func firstValidDate(re *regexp.Regexp, text string, allowShortYear bool) (string, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if d, ok := normalizeDate(m[1], m[2], m[3], allowShortYear); ok {
			return d, true
		}
	}
	return "", false
}

// normalizeDate zero-pads day and month and expands two-digit years with a pivot at 30.
func normalizeDate(day, month, year string, allowShortYear bool) (string, bool) {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	switch len(year) {
	case 4:
	case 2:
		if !allowShortYear {
			return "", false
		}
		if y, _ := strconv.Atoi(year); y > 30 {
			year = "19" + year
		} else {
			year = "20" + year
		}
	default:
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%s", d, m, year), true
}

func genderFromLabel(doc *Document) (string, bool) {
	for _, m := range genderLabeled.FindAllStringSubmatch(doc.Text, -1) {
		if g, ok := CanonicalGender(m[1]); ok {
			return g, true
		}
	}
	return "", false
}

// genderStandaloneWord scans for a bare gender word. Address and nationality lines are
// skipped because Vietnamese place names routinely contain "Nam".
func genderStandaloneWord(doc *Document) (string, bool) {
	for _, line := range doc.Lines {
		if originLabel.MatchString(line) || residenceLabel.MatchString(line) || nationalityLabel.MatchString(line) {
			continue
		}
		line = vietNam.ReplaceAllString(line, " ")
		if m := genderStandalone.FindStringSubmatch(line); m != nil {
			if g, ok := CanonicalGender(m[1]); ok {
				return g, true
			}
		}
	}
	return "", false
}

// labeledValue captures what follows the last occurrence of label on its line, up to the
// next known label. A bare label takes the following unlabelled line instead. With spill
// set, that following line is appended to a same-line value.
func labeledValue(label *regexp.Regexp, spill bool) func(doc *Document) (string, bool) {
	return func(doc *Document) (string, bool) {
		for i, line := range doc.Lines {
			locs := label.FindAllStringIndex(line, -1)
			if locs == nil {
				continue
			}
			value := untilNextLabel(line[locs[len(locs)-1][1]:])
			hasNext := i+1 < len(doc.Lines) && !anyLabel.MatchString(doc.Lines[i+1])
			switch {
			case value == "" && hasNext:
				value = doc.Lines[i+1]
			case spill && hasNext:
				value += " " + doc.Lines[i+1]
			}
			if value = collapse(value); value != "" {
				return value, true
			}
		}
		return "", false
	}
}

func untilNextLabel(s string) string {
	if loc := anyLabel.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.Trim(s, " :/\t-")
}

func authorityFromLine(doc *Document) (string, bool) {
	for _, line := range doc.Lines {
		if authorityLine.MatchString(line) {
			return collapse(line), true
		}
	}
	if policeMention.MatchString(doc.Text) {
		return DefaultAuthority, true
	}
	return "", false
}
