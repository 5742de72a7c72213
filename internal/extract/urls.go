package extract

import "regexp"

// Matches http(s) URLs greedily up to whitespace, closing brackets or quotes.
var urlPattern = regexp.MustCompile(`https?://[^\s\)\]\}"']+`)

func FindURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// urlSet deduplicates URLs while preserving discovery order.
type urlSet struct {
	seen  map[string]struct{}
	order []string
}

func newURLSet() *urlSet {
	return &urlSet{seen: map[string]struct{}{}}
}

func (u *urlSet) add(urls ...string) {
	for _, raw := range urls {
		if raw == "" {
			continue
		}
		if _, ok := u.seen[raw]; ok {
			continue
		}
		u.seen[raw] = struct{}{}
		u.order = append(u.order, raw)
	}
}

func (u *urlSet) values() []string {
	return u.order
}
