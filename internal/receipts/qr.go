package receipts

import (
	"encoding/base64"
	"html/template"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sanctified-studios/studio/internal/messaging"
)

const qrSize = 256

// ChatLink opens a chat with the studio's contact number, or "" when the contact
// line carries no usable phone number.
func (s StudioInfo) ChatLink() string {
	phone, err := messaging.NormalizePhone(messaging.Digits(s.Contact), messaging.DefaultCountryCode)
	if err != nil {
		return ""
	}
	return messaging.ChatLink(phone, "Hello "+s.Name)
}

// ContactQR encodes the studio chat link as a PNG. It returns nil when there is
// nothing to encode.
func ContactQR(s StudioInfo) ([]byte, error) {
	link := s.ChatLink()
	if link == "" {
		return nil, nil
	}
	return qrcode.Encode(link, qrcode.Medium, qrSize)
}

func contactQRDataURL(s StudioInfo) (template.URL, error) {
	png, err := ContactQR(s)
	if err != nil || png == nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
