// Package quote removes quoted-reply blocks from HTML message bodies
// before they are published in a snapshot.
package quote

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// quoteSelector matches the quoted-reply containers produced by common
// mail clients.
const quoteSelector = "blockquote, div.gmail_quote, div.yahoo_quoted, div.moz-cite-prefix, div.OutlookMessageHeader"

// Options control edge-case behavior of the stripper.
type Options struct {
	// KeepIfWholeBodyIsQuote returns the body untouched when stripping
	// would leave no visible text, so a forwarded-only message does not
	// publish as an empty shell.
	KeepIfWholeBodyIsQuote bool
}

// Stripper strips quoted replies from HTML bodies. The zero value strips
// unconditionally.
type Stripper struct {
	opts Options
}

func New(opts Options) *Stripper {
	return &Stripper{opts: opts}
}

// Strip removes quoted-reply blocks from body and returns the remaining
// HTML. Unparseable input is returned as-is: a body we cannot understand
// is better published verbatim than dropped.
func (s *Stripper) Strip(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}

	quoted := doc.Find(quoteSelector)
	if quoted.Length() == 0 {
		return body
	}
	quoted.Remove()

	if s.opts.KeepIfWholeBodyIsQuote && strings.TrimSpace(doc.Text()) == "" {
		return body
	}

	html, err := doc.Find("body").Html()
	if err != nil {
		return body
	}
	return strings.TrimSpace(html)
}
