package dbl

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LongDescriptionText returns the long description with HTML markup removed
// and whitespace collapsed. Listings written in markdown pass through mostly
// unchanged.
func (b Bot) LongDescriptionText() (string, error) {
	return htmlText(b.LongDescription)
}

// Summary returns the short description, falling back to the first maxLen
// runes of the long description text.
func (b Bot) Summary(maxLen int) string {
	if s := strings.TrimSpace(b.ShortDescription); s != "" {
		return s
	}
	text, err := b.LongDescriptionText()
	if err != nil {
		return ""
	}
	if maxLen > 0 {
		if r := []rune(text); len(r) > maxLen {
			return strings.TrimSpace(string(r[:maxLen])) + "..."
		}
	}
	return text
}

func htmlText(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, iframe").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
