//go:build cgo && !noocr

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs OCR through the local tesseract installation. A fresh client
// is created per call; gosseract clients are not reusable across images with
// differing formats.
type Tesseract struct {
	languages []string
}

func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages}
}

func (t *Tesseract) ImageFile(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("set ocr image %s: %w", path, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr image %s: %w", path, err)
	}
	return text, nil
}

func (t *Tesseract) ImageBytes(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set ocr image bytes: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr image bytes: %w", err)
	}
	return text, nil
}
