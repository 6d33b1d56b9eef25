package media

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// QRCodePNG encodes content as a square PNG QR code of size pixels, with
// low error correction to keep SKU codes sparse and easy to scan.
func QRCodePNG(content string, size int) ([]byte, error) {
	if size < MinQRSize || size > MaxQRSize {
		return nil, fmt.Errorf("qr size %d out of range [%d, %d]", size, MinQRSize, MaxQRSize)
	}
	png, err := qrcode.Encode(content, qrcode.Low, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
