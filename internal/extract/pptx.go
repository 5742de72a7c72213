package extract

import (
	"archive/zip"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func (e *Extractor) extractPptx(path string) (Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Result{}, fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	parts := indexZip(zr)

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for name, f := range parts {
		m := slidePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: n, file: f})
	}
	if len(slides) == 0 {
		return Result{}, fmt.Errorf("pptx has no slides")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var b strings.Builder
	urls := newURLSet()
	for _, sl := range slides {
		rc, err := sl.file.Open()
		if err != nil {
			return Result{}, fmt.Errorf("open slide %d: %w", sl.num, err)
		}
		body, linkIDs, err := collectText(rc, "hlinkClick")
		rc.Close()
		if err != nil {
			return Result{}, err
		}
		b.WriteString(body)

		// Hyperlink relationship IDs are scoped per slide.
		relsName := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", sl.num)
		if relsPart, ok := parts[relsName]; ok && len(linkIDs) > 0 {
			rels, err := parseRels(relsPart)
			if err != nil {
				log.Printf("pptx: parse %s: %v", relsName, err)
			}
			for _, id := range linkIDs {
				if target, ok := rels[id]; ok {
					urls.add(target)
				}
			}
		}
	}

	for _, media := range mediaFiles(zr, "ppt/media/") {
		data, err := zipFileBytes(media)
		if err != nil {
			log.Printf("pptx: read %s: %v", media.Name, err)
			continue
		}
		ocrText, err := e.ocr.ImageBytes(data)
		if err != nil {
			log.Printf("pptx: ocr %s failed: %v", media.Name, err)
			continue
		}
		b.WriteString(ocrText)
		b.WriteString("\n")
	}

	text := b.String()
	urls.add(FindURLs(text)...)
	return Result{Text: text, URLs: urls.values()}, nil
}
