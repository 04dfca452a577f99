package market

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML removes markup from s and returns the visible text with
// whitespace collapsed. Feed text (news descriptions, scraped bodies)
// regularly arrives with embedded tags.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return normalizeSpace(s)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return normalizeSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
