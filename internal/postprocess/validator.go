package postprocess

import (
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// MinChipIssueYear is the first year chip-based cards were issued.
const MinChipIssueYear = 2021

// Validate reports on fields without returning the corrected record.
func Validate(in models.Fields) models.ValidationReport {
	_, report := Process(in)
	return report
}

// Process corrects fields and reports on them. Invalid values are moved out of the
// returned record into Rejected so every value left in it is well formed. Running it on
// its own output changes nothing.
func Process(in models.Fields) (models.Fields, models.ValidationReport) {
	out := in
	report := models.ValidationReport{
		MissingFields:    []models.FieldName{},
		CriticalMissing:  []models.FieldName{},
		ValidationErrors: []string{},
	}
	reject := func(name models.FieldName, msg string) {
		if report.Rejected == nil {
			report.Rejected = make(map[string]string)
		}
		report.Rejected[string(name)] = out.Get(name)
		report.ValidationErrors = append(report.ValidationErrors, msg)
		out.Clear(name)
	}

	if out.Has(models.FieldCCCDNumber) {
		check := ValidateCCCDNumber(out.CCCDNumber)
		if check.Valid {
			out.CCCDNumber = check.Fixed
		} else {
			reject(models.FieldCCCDNumber, check.Error)
			report.NeedsManualReview = true
		}
	}

	if out.Has(models.FieldDateOfBirth) {
		check := ValidateDate(out.DateOfBirth, "Date of birth")
		if check.Valid {
			out.DateOfBirth = check.Fixed
		} else {
			reject(models.FieldDateOfBirth, check.Error)
			report.NeedsManualReview = true
		}
	}

	if out.Has(models.FieldGender) {
		switch out.Gender {
		case models.GenderMale, models.GenderFemale:
		default:
			reject(models.FieldGender, "Gender must be Nam or Nữ, got "+out.Gender)
		}
	}

	if out.Has(models.FieldIssueDate) {
		check := ValidateDate(out.IssueDate, "Issue date")
		if check.Valid {
			out.IssueDate = check.Fixed
			if check.Year < MinChipIssueYear {
				report.ValidationErrors = append(report.ValidationErrors, "Issue date must be >= 2021 for chip-based CCCD")
				report.NeedsManualReview = true
			}
		} else {
			reject(models.FieldIssueDate, check.Error)
		}
	}

	for _, name := range models.CriticalFields {
		if !out.Has(name) {
			report.CriticalMissing = append(report.CriticalMissing, name)
		}
	}
	report.MissingFields = append(report.MissingFields, report.CriticalMissing...)
	for _, name := range models.OptionalFields {
		if !out.Has(name) {
			report.MissingFields = append(report.MissingFields, name)
		}
	}
	report.FormatValid = len(report.CriticalMissing) == 0
	return out, report
}
