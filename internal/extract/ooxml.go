package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Shared plumbing for the OOXML container formats (docx, pptx). Both are zip
// archives of XML parts; text lives in <w:t>/<a:t> runs, hyperlinks are
// indirected through relationship parts, and embedded images sit under a
// media/ folder.

func indexZip(zr *zip.ReadCloser) map[string]*zip.File {
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}
	return parts
}

func zipFileBytes(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip part %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// mediaFiles returns the archive entries under prefix in name order, so OCR
// output is appended deterministically.
func mediaFiles(zr *zip.ReadCloser, prefix string) []*zip.File {
	var out []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && !strings.HasSuffix(f.Name, "/") {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// collectText walks one XML part, gathering the character data of every text
// run (<w:t> or <a:t>), a newline per closed paragraph, and the relationship
// IDs referenced by linkLocal elements (w:hyperlink / a:hlinkClick).
func collectText(r io.Reader, linkLocal string) (string, []string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	var links []string
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse xml part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case linkLocal:
				for _, a := range t.Attr {
					if a.Name.Local == "id" && a.Value != "" {
						links = append(links, a.Value)
					}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), links, nil
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// parseRels maps relationship IDs to their external targets. Internal
// relationships (styles, images, themes) are ignored.
func parseRels(f *zip.File) (map[string]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open rels part %s: %w", f.Name, err)
	}
	defer rc.Close()

	var doc struct {
		Relationships []relationship `xml:"Relationship"`
	}
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse rels part %s: %w", f.Name, err)
	}
	out := make(map[string]string, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		if strings.HasSuffix(rel.Type, "/hyperlink") || strings.EqualFold(rel.TargetMode, "External") {
			out[rel.ID] = rel.Target
		}
	}
	return out, nil
}
