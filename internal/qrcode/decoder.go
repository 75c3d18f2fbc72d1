// Package qrcode reads the QR code printed on the front of a chip-based CCCD.
package qrcode

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/anime-shed/cccd-inspector-go/internal/logger"
)

// Decoder returns the raw text of the first QR code found in an image.
type Decoder interface {
	Decode(img image.Image) (string, bool)
}

type zxingDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder creates a decoder that tries hard and reads UTF-8 payloads.
func NewDecoder() Decoder {
	return &zxingDecoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER:    true,
			gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
		},
	}
}

// Decode never fails loudly: an unreadable or missing code is reported as absent.
func (d *zxingDecoder) Decode(img image.Image) (string, bool) {
	if img == nil || img.Bounds().Empty() {
		return "", false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		logger.Component("qrcode").WithError(err).Debug("bitmap conversion failed")
		return "", false
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		return "", false
	}
	return result.GetText(), result.GetText() != ""
}

// Read decodes the card QR in img and parses its payload.
func Read(d Decoder, img image.Image) (*Payload, bool) {
	text, ok := d.Decode(img)
	if !ok {
		return nil, false
	}
	return ParsePayload(text)
}
