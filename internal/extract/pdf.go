package extract

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) extractPDF(path string) (Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	urls := newURLSet()
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("pdf: page %d text extraction failed: %v", i, err)
			pageText = ""
		}
		// Only pages without their own text fall back to OCR of embedded
		// raster images; pages that are neither are skipped.
		if strings.TrimSpace(pageText) == "" {
			for _, img := range pageImages(page) {
				ocrText, err := e.ocr.ImageBytes(img)
				if err != nil {
					log.Printf("pdf: page %d embedded image ocr failed: %v", i, err)
					continue
				}
				pageText += ocrText
			}
		}
		b.WriteString(pageText)
		urls.add(FindURLs(pageText)...)
	}
	return Result{Text: b.String(), URLs: urls.values()}, nil
}

// pageImages returns the raw streams of the image XObjects on a page.
func pageImages(page pdf.Page) [][]byte {
	xobj := page.V.Key("Resources").Key("XObject")
	if xobj.Kind() != pdf.Dict {
		return nil
	}
	var out [][]byte
	for _, name := range xobj.Keys() {
		obj := xobj.Key(name)
		if obj.Kind() != pdf.Stream || obj.Key("Subtype").Name() != "Image" {
			continue
		}
		data, err := io.ReadAll(obj.Reader())
		if err != nil {
			log.Printf("pdf: read image stream %s: %v", name, err)
			continue
		}
		out = append(out, data)
	}
	return out
}
