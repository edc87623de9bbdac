// Package visitorpass produces signed QR badges for checked-in visitors.
package visitorpass

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"consultdesk/internal/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Issuer signs visitor payloads so front desk scanners can detect forgeries.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

func (i *Issuer) sign(data string) string {
	h := hmac.New(sha256.New, i.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Payload returns "visitorID|name|checkinUnix|signature".
func (i *Issuer) Payload(v *models.Visitor) string {
	name := strings.ReplaceAll(v.FullName, "|", " ")
	data := fmt.Sprintf("%s|%s|%d", v.ID, name, v.CheckedInAt.Unix())
	return data + "|" + i.sign(data)
}

// Verify checks a scanned payload and returns the visitor id it names.
func (i *Issuer) Verify(payload string) (string, error) {
	idx := strings.LastIndex(payload, "|")
	if idx < 0 {
		return "", errors.New("malformed pass")
	}
	data, sig := payload[:idx], payload[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(i.sign(data))) {
		return "", errors.New("invalid pass signature")
	}
	return strings.SplitN(data, "|", 2)[0], nil
}

// PNG renders the visitor's payload as a QR code of size x size pixels.
func (i *Issuer) PNG(v *models.Visitor, size int) ([]byte, error) {
	return qrcode.Encode(i.Payload(v), qrcode.Medium, size)
}

// PDF renders a printable badge with the visitor's name, purpose, check-in
// time and QR code.
func (i *Issuer) PDF(v *models.Visitor, loc *time.Location) ([]byte, error) {
	qrPNG, err := i.PNG(v, 256)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Visitor Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Name: "+v.FullName)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Purpose: "+v.Purpose)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Checked in: "+v.CheckedInAt.In(loc).Format("2006-01-02 15:04"))
	pdf.Ln(10)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 27, 50, 50, 50, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
