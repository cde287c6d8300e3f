package textproc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p,div,br,li,h1,h2,h3,h4,h5,h6,tr,td,th,blockquote,section,article"

// StripMarkup returns the visible text of an HTML fragment. Block elements are
// separated by whitespace so adjacent paragraphs do not fuse into one word.
// Text without markup is returned unchanged.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script,style,noscript").Remove()

	var b strings.Builder
	writeText(&b, doc.Selection)
	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			b.WriteString(node.Text())
			return
		}
		writeText(b, node)
		if node.Is(blockElements) {
			b.WriteByte(' ')
		}
	})
}
