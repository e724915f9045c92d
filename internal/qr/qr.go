// Package qr renders the live-session QR payload for the terminal and for
// export as an image.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Terminal renders value as a half-block QR string suitable for printing in
// a terminal, two matrix rows per text line.
func Terminal(value string) (string, error) {
	code, err := qrcode.New(value, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr: %w", err)
	}

	bitmap := code.Bitmap()
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := 0; x < len(bitmap[y]); x++ {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// PNG writes value as a QR PNG file of the given pixel size.
func PNG(value, path string, size int) error {
	if err := qrcode.WriteFile(value, qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("failed to write qr png: %w", err)
	}
	return nil
}
