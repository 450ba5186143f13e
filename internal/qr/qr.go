// Package qr renders a device's personal AutoRemote URL as a scannable image.
package qr

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// PNG encodes content as a QR code image.
func PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("nothing to encode")
	}

	code, err := qrcode.New(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf}, standard.WithBuiltinImageEncoder(standard.PNG_FORMAT))
	if err := code.Save(w); err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	return buf.Bytes(), nil
}

func WriteFile(path, content string) error {
	data, err := PNG(content)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
