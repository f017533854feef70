package detector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseHTML parses the email as an HTML document. Plain text parses fine too;
// it simply has no anchors.
func parseHTML(text string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(text))
}

// ExtractURLs collects anchor targets from doc and every http(s) URL found in
// the raw text. Duplicates are dropped; the first occurrence keeps its place.
// A nil doc means the HTML parse failed and only the text scan is used.
func ExtractURLs(doc *goquery.Document, text string) []string {
	urls := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	if doc != nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if strings.TrimSpace(href) != "" {
				add(href)
			}
		})
	}

	for _, u := range urlPattern.FindAllString(text, -1) {
		add(u)
	}
	return urls
}

// hasDisplayedAnchor reports whether some link shows text to the reader
func hasDisplayedAnchor(doc *goquery.Document, text string) bool {
	if doc == nil {
		for _, m := range anchorTextFallback.FindAllStringSubmatch(text, -1) {
			if strings.TrimSpace(m[1]) != "" {
				return true
			}
		}
		return false
	}

	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "" {
			found = true
		}
		return !found
	})
	return found
}
