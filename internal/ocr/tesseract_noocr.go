//go:build !cgo || noocr

package ocr

import "errors"

var errOCRDisabled = errors.New("ocr support compiled out")

// Tesseract is a no-op placeholder when the tree is built with the noocr tag,
// which drops the cgo dependency on libtesseract.
type Tesseract struct{}

func NewTesseract(languages ...string) *Tesseract {
	_ = languages
	return &Tesseract{}
}

func (t *Tesseract) ImageFile(path string) (string, error) {
	return "", errOCRDisabled
}

func (t *Tesseract) ImageBytes(data []byte) (string, error) {
	return "", errOCRDisabled
}
