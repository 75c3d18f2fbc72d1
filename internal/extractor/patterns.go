package extractor

import (
	"regexp"
	"strings"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const upperVN = `A-ZÀÁẠẢÃÂẦẤẬẨẪĂẰẮẶẲẴÈÉẸẺẼÊỀẾỆỂỄÌÍỊỈĨÒÓỌỎÕÔỒỐỘỔỖƠỜỚỢỞỠÙÚỤỦŨƯỪỨỰỬỮỲÝỴỶỸĐ`

var (
	upperWord = regexp.MustCompile(`^[` + upperVN + `]+$`)
	upperLine = regexp.MustCompile(`^[` + upperVN + `\s]+$`)
	spaceRun  = regexp.MustCompile(`\s+`)
	digitRun  = regexp.MustCompile(`\d+`)

	cccdLabeled = regexp.MustCompile(`(?i)(?:Số|No\.?|ID)[:\s/]*(\d{12})(?:\D|$)`)
	cccdBare    = regexp.MustCompile(`\b(\d{12})\b`)

	nameLabel = regexp.MustCompile(`(?i)Họ và tên|Full name`)

	dobLabeled = regexp.MustCompile(`(?i)(?:Ngày sinh|Date of birth|birth)[:\s/]*(\d{1,2})[\s/\-.](\d{1,2})[\s/\-.](\d{2,4})`)
	dateBare   = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)

	issueLabeled = regexp.MustCompile(`(?i)(?:Ngày,? tháng,? năm|Date,? month,? year|Ngày cấp|Date of issue)[:\s/]*(\d{1,2})[\s/\-.](\d{1,2})[\s/\-.](\d{4})`)

	genderLabeled    = regexp.MustCompile(`(?i)(?:Giới tính|Sex)[:\s/]*(Male|Female|Nam|Nữ|Ngm|Nu|M|F)(?:[^\p{L}]|$)`)
	genderStandalone = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(Nam|Nữ|Ngm|Male|Female)(?:[^\p{L}]|$)`)
	vietNam          = regexp.MustCompile(`(?i)Việt\s*Nam`)

	nationalityLabel = regexp.MustCompile(`(?i)Quốc tịch|Nationality`)
	originLabel      = regexp.MustCompile(`(?i)Quê quán|Place of origin`)
	residenceLabel   = regexp.MustCompile(`(?i)Nơi thường trú|Nơi cư trú|Place of residence`)
	authorityLabel   = regexp.MustCompile(`(?i)Cơ quan cấp|Cơ quan|Issuing authority|Authority`)
	authorityLine    = regexp.MustCompile(`(?i)\bcục\b`)
	policeMention    = regexp.MustCompile(`(?i)Công\s*an`)

	// anyLabel ends a labelled value that shares its line with the next label.
	anyLabel = regexp.MustCompile(`(?i)Họ và tên|Full name|Ngày sinh|Date of birth|Giới tính|Sex\b|Quốc tịch|Nationality|` +
		`Quê quán|Place of origin|Nơi thường trú|Nơi cư trú|Place of residence|Có giá trị đến|Date of expiry|` +
		`Ngày,? tháng,? năm|Date,? month,? year|Ngày cấp|Date of issue|Đặc điểm nhân dạng|Personal identification|` +
		`Cơ quan|Authority`)
)

// DefaultAuthority is reported when the back side only mentions the police ministry.
const DefaultAuthority = "Cục Cảnh sát ĐKQL cư trú và DLQG về dân cư"

var genderSynonyms = map[string]string{
	"nam":    models.GenderMale,
	"m":      models.GenderMale,
	"male":   models.GenderMale,
	"ngm":    models.GenderMale,
	"nữ":     models.GenderFemale,
	"nu":     models.GenderFemale,
	"f":      models.GenderFemale,
	"female": models.GenderFemale,
}

// CanonicalGender maps a recognized token onto Nam or Nữ.
func CanonicalGender(token string) (string, bool) {
	g, ok := genderSynonyms[strings.ToLower(strings.TrimSpace(token))]
	return g, ok
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
