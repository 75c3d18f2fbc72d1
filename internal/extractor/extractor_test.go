package extractor

import (
	"testing"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const frontCard = `CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM
Độc lập - Tự do - Hạnh phúc
SOCIALIST REPUBLIC OF VIET NAM
CĂN CƯỚC CÔNG DÂN
Citizen Identity Card
Số / No.: 079090001234
Họ và tên / Full name:
NGUYỄN VĂN AN
Ngày sinh / Date of birth: 15/08/1990
Giới tính / Sex: Nam Quốc tịch / Nationality: Việt Nam
Quê quán / Place of origin: Xã Tân Phú, Huyện Đức Hòa, Long An
Nơi thường trú / Place of residence: 123 Nguyễn Trãi, Phường 2
Quận 5, TP. Hồ Chí Minh
Có giá trị đến: 15/08/2030`

const backCard = `Đặc điểm nhân dạng / Personal identification: Nốt ruồi C:1cm trên đầu mày trái
Ngày, tháng, năm / Date, month, year: 15/04/2021
CỤC TRƯỞNG CỤC CẢNH SÁT
QUẢN LÝ HÀNH CHÍNH VỀ TRẬT TỰ XÃ HỘI
IDVNM0900012345079090001234<<8`

func TestExtract_SingleLineScenario(t *testing.T) {
	text := "Số 012345678901 Họ và tên NGUYEN VAN A Ngày sinh 01/01/1990 Giới tính Nam"
	res := New().Extract(text, SideFront)

	want := models.Fields{
		CCCDNumber:  "012345678901",
		FullName:    "NGUYEN VAN A",
		DateOfBirth: "01/01/1990",
		Gender:      "Nam",
	}
	if res.Fields != want {
		t.Errorf("Expected %+v, got %+v", want, res.Fields)
	}
	if res.Sources[models.FieldCCCDNumber] != "cccd_labeled" {
		t.Errorf("Expected labeled cccd match, got %s", res.Sources[models.FieldCCCDNumber])
	}
	if res.Sources[models.FieldFullName] != "name_same_line" {
		t.Errorf("Expected same line name match, got %s", res.Sources[models.FieldFullName])
	}
}

func TestExtract_FrontCard(t *testing.T) {
	res := New().Extract(frontCard, SideFront)
	tests := []struct {
		field models.FieldName
		want  string
	}{
		{models.FieldCCCDNumber, "079090001234"},
		{models.FieldFullName, "NGUYỄN VĂN AN"},
		{models.FieldDateOfBirth, "15/08/1990"},
		{models.FieldGender, "Nam"},
		{models.FieldNationality, "Việt Nam"},
		{models.FieldPlaceOfOrigin, "Xã Tân Phú, Huyện Đức Hòa, Long An"},
		{models.FieldPlaceOfResidence, "123 Nguyễn Trãi, Phường 2 Quận 5, TP. Hồ Chí Minh"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			if got := res.Fields.Get(tt.field); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
	if res.Sources[models.FieldFullName] != "name_next_line" {
		t.Errorf("Expected next line name match, got %s", res.Sources[models.FieldFullName])
	}
	if res.Fields.IssueDate != "" || res.Fields.IssuingAuthority != "" {
		t.Error("Expected back-side fields to stay empty on the front")
	}
}

func TestExtract_BackCard(t *testing.T) {
	res := New().Extract(backCard, SideBack)
	if res.Fields.IssueDate != "15/04/2021" {
		t.Errorf("Expected issue date 15/04/2021, got %q", res.Fields.IssueDate)
	}
	if res.Fields.IssuingAuthority != "CỤC TRƯỞNG CỤC CẢNH SÁT" {
		t.Errorf("Expected authority line, got %q", res.Fields.IssuingAuthority)
	}
	if res.Fields.CCCDNumber != "" {
		t.Errorf("Expected no cccd from back strategies, got %q", res.Fields.CCCDNumber)
	}
}

func TestExtract_AuthorityFallbacks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labelled", "Cơ quan cấp: Cục Cảnh sát QLHC về TTXH", "Cục Cảnh sát QLHC về TTXH"},
		{"police mention only", "Bộ Công an\n15/04/2021", DefaultAuthority},
		{"nothing", "15/04/2021", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Extract(tt.text, SideBack).Fields.IssuingAuthority; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_PositionalName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"uppercase line", "CĂN CƯỚC CÔNG DÂN\nTRẦN THỊ BÍCH\n01/02/1985", "TRẦN THỊ BÍCH"},
		{"header skipped", "SOCIALIST REPUBLIC OF\nLÊ MINH TUẤN", "LÊ MINH TUẤN"},
		{"misread header skipped", "CITIZEN IDENTITV CARO\nPHẠM QUỐC HUY", "PHẠM QUỐC HUY"},
		{"too short", "LE AN", ""},
		{"too many words", "A B C D E F G H", ""},
		{"mixed case", "Nguyễn Văn An", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Extract(tt.text, SideFront).Fields.FullName; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"dashes", "Ngày sinh: 5-3-1992", "05/03/1992"},
		{"dots", "Date of birth 05.03.1992", "05/03/1992"},
		{"short year old", "Ngày sinh 05/03/92", "05/03/1992"},
		{"short year new", "Ngày sinh 05/03/05", "05/03/2005"},
		{"bad month falls back to bare", "Ngày sinh 05/13/1992 khác 07/04/1993", "07/04/1993"},
		{"bare only", "xyz 28/02/2001", "28/02/2001"},
		{"no date", "no date here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Extract(tt.text, SideFront).Fields.DateOfBirth; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_Gender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"label nam", "Giới tính: Nam", "Nam"},
		{"label female english", "Sex: FEMALE", "Nữ"},
		{"label misread", "Giới tính Ngm", "Nam"},
		{"label nu", "Giới tính / Sex: Nữ", "Nữ"},
		{"label single letter", "Sex: F", "Nữ"},
		{"standalone", "NGUYEN THI B\nNữ", "Nữ"},
		{"country is not gender", "Quốc tịch: Việt Nam\nCỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM", ""},
		{"province is not gender", "Quê quán: Hà Nam", ""},
		{"nothing", "no gender", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Extract(tt.text, SideFront).Fields.Gender; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_CCCDNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"label", "Số: 001099012345", "001099012345"},
		{"bare", "hello 001099012345 world", "001099012345"},
		{"thirteen digits", "0010990123456", ""},
		{"labelled thirteen digits", "Số: 0010990123456", ""},
		{"labelled beats bare", "998877665544 No. 001099012345", "001099012345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New().Extract(tt.text, SideFront).Fields.CCCDNumber; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_DecomposedInput(t *testing.T) {
	// "Nữ" written as u plus combining horn and tilde.
	text := "Giới tính: Nu\u031b\u0303"
	if got := New().Extract(text, SideFront).Fields.Gender; got != "Nữ" {
		t.Errorf("Expected NFC normalized gender Nữ, got %q", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	res := New().Extract("", SideFront)
	if !res.Fields.IsEmpty() {
		t.Errorf("Expected empty fields, got %+v", res.Fields)
	}
	if len(res.Sources) != 0 {
		t.Errorf("Expected no sources, got %v", res.Sources)
	}
}

func TestRun_Precedence(t *testing.T) {
	strategies := []Strategy{
		{models.FieldFullName, "first", TierLabeled, func(*Document) (string, bool) { return "", false }},
		{models.FieldFullName, "second", TierLabeled, func(*Document) (string, bool) { return "SECOND", true }},
		{models.FieldFullName, "third", TierPositional, func(*Document) (string, bool) { return "THIRD", true }},
	}
	res := Run(NewDocument("x"), strategies)
	if res.Fields.FullName != "SECOND" || res.Sources[models.FieldFullName] != "second" {
		t.Errorf("Expected the first successful strategy to win, got %+v", res)
	}
}

func TestNewWithStrategies_PicksTableBySide(t *testing.T) {
	fixed := func(v string) func(*Document) (string, bool) {
		return func(*Document) (string, bool) { return v, true }
	}
	e := NewWithStrategies(
		[]Strategy{{models.FieldFullName, "front", TierLabeled, fixed("FRONT")}},
		[]Strategy{{models.FieldIssuingAuthority, "back", TierLabeled, fixed("BACK")}},
	)
	if got := e.Extract("x", SideFront).Fields; got.FullName != "FRONT" || got.IssuingAuthority != "" {
		t.Errorf("Expected only the front table, got %+v", got)
	}
	if got := e.Extract("x", SideBack).Fields; got.IssuingAuthority != "BACK" || got.FullName != "" {
		t.Errorf("Expected only the back table, got %+v", got)
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"adjacent runs", "A B 1234 5678 9012 C", "123456789012", true},
		{"single run", "xx 079090001234 yy", "079090001234", true},
		{"pair of runs", "079090 001234", "079090001234", true},
		{"first twelve of long run", "0790900012345678", "079090001234", true},
		{"too few digits", "12345", "", false},
		{"header digits ignored", "CĂN CƯỚC CÔNG DÂN 12 34", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNumber(tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestCanonicalGender(t *testing.T) {
	for _, tok := range []string{"Nam", "NAM", "m", "Male", "ngm"} {
		if g, ok := CanonicalGender(tok); !ok || g != models.GenderMale {
			t.Errorf("Expected %q to map to Nam, got %q", tok, g)
		}
	}
	for _, tok := range []string{"Nữ", "NỮ", "nu", "F", "female"} {
		if g, ok := CanonicalGender(tok); !ok || g != models.GenderFemale {
			t.Errorf("Expected %q to map to Nữ, got %q", tok, g)
		}
	}
	if _, ok := CanonicalGender("X"); ok {
		t.Error("Expected unknown token to be rejected")
	}
}

func TestIsHeaderLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM", true},
		{"Citizen Identity Card", true},
		{"REPUBLIG", true},
		{"CARO", false},
		{"NGUYỄN VĂN AN", false},
	}
	for _, tt := range tests {
		if got := isHeaderLine(tt.line); got != tt.want {
			t.Errorf("isHeaderLine(%q): expected %v, got %v", tt.line, tt.want, got)
		}
	}
}
