package extract

import (
	"archive/zip"
	"fmt"
	"log"
	"strings"
)

func (e *Extractor) extractDocx(path string) (Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Result{}, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	parts := indexZip(zr)
	docPart, ok := parts["word/document.xml"]
	if !ok {
		return Result{}, fmt.Errorf("docx has no word/document.xml part")
	}
	rc, err := docPart.Open()
	if err != nil {
		return Result{}, fmt.Errorf("open document part: %w", err)
	}
	body, linkIDs, err := collectText(rc, "hyperlink")
	rc.Close()
	if err != nil {
		return Result{}, err
	}

	var b strings.Builder
	b.WriteString(body)

	for _, media := range mediaFiles(zr, "word/media/") {
		data, err := zipFileBytes(media)
		if err != nil {
			log.Printf("docx: read %s: %v", media.Name, err)
			continue
		}
		ocrText, err := e.ocr.ImageBytes(data)
		if err != nil {
			log.Printf("docx: ocr %s failed: %v", media.Name, err)
			continue
		}
		b.WriteString(ocrText)
		b.WriteString("\n")
	}

	urls := newURLSet()
	if relsPart, ok := parts["word/_rels/document.xml.rels"]; ok {
		rels, err := parseRels(relsPart)
		if err != nil {
			log.Printf("docx: parse relationships: %v", err)
		}
		for _, id := range linkIDs {
			if target, ok := rels[id]; ok {
				urls.add(target)
			}
		}
	}
	text := b.String()
	urls.add(FindURLs(text)...)
	return Result{Text: text, URLs: urls.values()}, nil
}
