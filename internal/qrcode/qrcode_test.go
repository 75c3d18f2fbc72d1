package qrcode

import (
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

const samplePayload = "012345678901|123456789|Nguyễn Văn A|01011990|Nam|Số 1 Tràng Tiền, Hoàn Kiếm, Hà Nội|15042021"

func encodeQR(t *testing.T, text string) image.Image {
	t.Helper()
	matrix, err := zxqr.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 300, 300, nil)
	if err != nil {
		t.Fatalf("Failed to encode QR code: %v", err)
	}
	return matrix
}

func TestParsePayload(t *testing.T) {
	p, ok := ParsePayload(samplePayload)
	if !ok {
		t.Fatal("Expected payload to parse")
	}
	want := Payload{
		CCCDNumber:  "012345678901",
		LegacyID:    "123456789",
		FullName:    "Nguyễn Văn A",
		DateOfBirth: "01/01/1990",
		Gender:      "Nam",
		Residence:   "Số 1 Tràng Tiền, Hoàn Kiếm, Hà Nội",
		IssueDate:   "15/04/2021",
	}
	if *p != want {
		t.Errorf("Expected %+v, got %+v", want, *p)
	}
}

func TestParsePayload_Variants(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantOK     bool
		wantGender string
		wantIssue  string
		wantDOB    string
	}{
		{"no legacy id", "012345678901||TRAN THI B|02031985|Nữ|Huế|01072021", true, "Nữ", "01/07/2021", "02/03/1985"},
		{"no issue date", "012345678901||TRAN THI B|02031985|Nữ|Huế", true, "Nữ", "", "02/03/1985"},
		{"decomposed gender", "012345678901||TRAN THI B|02031985|Nu\u031b\u0303|Huế|01072021", true, "Nữ", "01/07/2021", "02/03/1985"},
		{"bad date dropped", "012345678901||TRAN THI B|2/3/85|Nam|Huế|", true, "Nam", "", ""},
		{"unknown gender", "012345678901||TRAN THI B|02031985|X|Huế|", true, "", "", "02/03/1985"},
		{"short number", "01234567890||TRAN THI B|02031985|Nam|Huế|", false, "", "", ""},
		{"too few parts", "012345678901|TRAN THI B|02031985", false, "", "", ""},
		{"url", "https://example.com", false, "", "", ""},
		{"empty", "", false, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParsePayload(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if p.Gender != tt.wantGender || p.IssueDate != tt.wantIssue || p.DateOfBirth != tt.wantDOB {
				t.Errorf("Expected gender %q issue %q dob %q, got %+v", tt.wantGender, tt.wantIssue, tt.wantDOB, p)
			}
		})
	}
}

func TestPayloadFields(t *testing.T) {
	p, _ := ParsePayload(samplePayload)
	f := p.Fields()
	if f.CCCDNumber != "012345678901" || f.IssueDate != "15/04/2021" || f.PlaceOfResidence == "" {
		t.Errorf("Unexpected fields %+v", f)
	}
	if f.Has(models.FieldNationality) || f.Has(models.FieldPlaceOfOrigin) {
		t.Error("Expected fields absent from the payload to stay empty")
	}

	var nilPayload *Payload
	if !nilPayload.Fields().IsEmpty() {
		t.Error("Expected nil payload to yield no fields")
	}
}

func TestDecoder_RoundTrip(t *testing.T) {
	text := "012345678901|123456789|NGUYEN VAN A|01011990|Nam|HA NOI|15042021"
	img := encodeQR(t, text)

	got, ok := NewDecoder().Decode(img)
	if !ok {
		t.Fatal("Expected QR code to decode")
	}
	if got != text {
		t.Errorf("Expected %q, got %q", text, got)
	}

	p, ok := Read(NewDecoder(), img)
	if !ok || p.FullName != "NGUYEN VAN A" {
		t.Errorf("Expected parsed payload, got %+v", p)
	}
}

func TestDecoder_NoCode(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0))},
		{"uniform", uniform(200, 200, color.RGBA{255, 255, 255, 255})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := NewDecoder().Decode(tt.img); ok {
				t.Error("Expected no QR code")
			}
		})
	}
}

func TestRead_NotACardPayload(t *testing.T) {
	img := encodeQR(t, "hello world")
	if _, ok := Read(NewDecoder(), img); ok {
		t.Error("Expected non card payload to be rejected")
	}
}

func uniform(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
