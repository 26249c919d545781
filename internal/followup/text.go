package followup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<(p|br|div|li|ul|ol|html|body|h[1-6])[\s/>]`)

// PlainText flattens HTML model output into text. Non-HTML input is returned unchanged.
func PlainText(s string) string {
	if !htmlTag.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		li.PrependHtml("- ")
	})
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

var subjectPrefix = regexp.MustCompile(`(?i)^\**\s*(konu|subject)\s*:\s*\**\s*`)

// SplitSubject separates a leading "Konu:" / "Subject:" line from the body.
// Without one the default subject is used and the whole text is the body.
func SplitSubject(text string) (subject, body string) {
	text = strings.TrimSpace(text)
	first, rest, _ := strings.Cut(text, "\n")
	if loc := subjectPrefix.FindStringIndex(first); loc != nil {
		subject = strings.Trim(strings.TrimSpace(first[loc[1]:]), "*")
		subject = strings.TrimSpace(subject)
		if subject == "" {
			subject = Subject
		}
		return subject, strings.TrimSpace(rest)
	}
	return Subject, text
}
