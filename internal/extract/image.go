package extract

import "log"

// Standalone images are OCR'd whole. An OCR failure contributes no text
// rather than failing the upload; the pipeline rejects the document later if
// nothing at all was recovered.
func (e *Extractor) extractImage(path string) (Result, error) {
	text, err := e.ocr.ImageFile(path)
	if err != nil {
		log.Printf("image: ocr %s failed: %v", path, err)
		return Result{}, nil
	}
	return Result{Text: text}, nil
}
