package models

import "strings"

// FieldName identifies one key of the extracted identity record.
type FieldName string

const (
	FieldCCCDNumber       FieldName = "cccd_number"
	FieldFullName         FieldName = "full_name"
	FieldDateOfBirth      FieldName = "date_of_birth"
	FieldGender           FieldName = "gender"
	FieldNationality      FieldName = "nationality"
	FieldPlaceOfOrigin    FieldName = "place_of_origin"
	FieldPlaceOfResidence FieldName = "place_of_residence"
	FieldIssueDate        FieldName = "issue_date"
	FieldIssuingAuthority FieldName = "issuing_authority"
)

// Canonical gender tokens.
const (
	GenderMale   = "Nam"
	GenderFemale = "Nữ"
)

// DefaultNationality is assumed for MRZ records that carry no readable nationality.
const DefaultNationality = "Việt Nam"

// CriticalFields must all be present and well formed for a record to be format valid.
var CriticalFields = []FieldName{
	FieldCCCDNumber,
	FieldFullName,
	FieldDateOfBirth,
	FieldGender,
}

// OptionalFields are reported when missing but never affect format validity.
var OptionalFields = []FieldName{
	FieldPlaceOfOrigin,
	FieldPlaceOfResidence,
	FieldIssueDate,
	FieldIssuingAuthority,
}

// AllFields lists every key in output order.
var AllFields = []FieldName{
	FieldCCCDNumber,
	FieldFullName,
	FieldDateOfBirth,
	FieldGender,
	FieldNationality,
	FieldPlaceOfOrigin,
	FieldPlaceOfResidence,
	FieldIssueDate,
	FieldIssuingAuthority,
}

// Fields is the canonical extracted record. An empty string means the field is absent
// and is omitted from JSON output.
type Fields struct {
	CCCDNumber       string `json:"cccd_number,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	PlaceOfOrigin    string `json:"place_of_origin,omitempty"`
	PlaceOfResidence string `json:"place_of_residence,omitempty"`
	IssueDate        string `json:"issue_date,omitempty"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
}

// Get returns the value stored under name.
func (f Fields) Get(name FieldName) string {
	if p := f.ptr(name); p != nil {
		return *p
	}
	return ""
}

// Set stores value under name after trimming. Unknown names are ignored.
func (f *Fields) Set(name FieldName, value string) {
	if p := f.ptr(name); p != nil {
		*p = strings.TrimSpace(value)
	}
}

// Has reports whether name holds a non-empty value.
func (f Fields) Has(name FieldName) bool {
	return f.Get(name) != ""
}

// Clear removes the value stored under name.
func (f *Fields) Clear(name FieldName) {
	f.Set(name, "")
}

// IsEmpty reports whether no field is present.
func (f Fields) IsEmpty() bool {
	return f.Count() == 0
}

// Count returns the number of present fields.
func (f Fields) Count() int {
	return len(f.Present())
}

// Present lists present field names in output order.
func (f Fields) Present() []FieldName {
	out := make([]FieldName, 0, len(AllFields))
	for _, name := range AllFields {
		if f.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

func (f *Fields) ptr(name FieldName) *string {
	switch name {
	case FieldCCCDNumber:
		return &f.CCCDNumber
	case FieldFullName:
		return &f.FullName
	case FieldDateOfBirth:
		return &f.DateOfBirth
	case FieldGender:
		return &f.Gender
	case FieldNationality:
		return &f.Nationality
	case FieldPlaceOfOrigin:
		return &f.PlaceOfOrigin
	case FieldPlaceOfResidence:
		return &f.PlaceOfResidence
	case FieldIssueDate:
		return &f.IssueDate
	case FieldIssuingAuthority:
		return &f.IssuingAuthority
	}
	return nil
}
