package extract

import (
	"fmt"
	"strings"

	"docqa/internal/ocr"
	"docqa/internal/util"
)

// Result is the raw text of a document plus every unique URL discovered in it.
type Result struct {
	Text string
	URLs []string
}

// Extractor turns an uploaded file into text. Pages, paragraphs and shapes are
// walked sequentially; embedded images are handed to the OCR engine one at a
// time and individual OCR failures are logged and skipped.
type Extractor struct {
	ocr ocr.Engine
}

func New(engine ocr.Engine) *Extractor {
	return &Extractor{ocr: engine}
}

// Extract dispatches on the declared extension. The extension decides the
// parser; file content is never sniffed.
func (e *Extractor) Extract(path, ext string) (Result, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return e.extractPDF(path)
	case "docx":
		return e.extractDocx(path)
	case "pptx":
		return e.extractPptx(path)
	case "png", "jpg", "jpeg":
		return e.extractImage(path)
	default:
		return Result{}, fmt.Errorf("%w: %q", util.ErrUnsupportedFormat, ext)
	}
}
