package notes

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"

	"github.com/ahsanfayaz52/noteservice/internal/models"
)

const maxTitleRunes = 50

// blockElements end a line of text when the editor's HTML is flattened.
const blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, pre"

var (
	fontColor = regexp.MustCompile(`^(?i)(#[0-9a-f]{3,8}|[a-z]+)$`)
	policy    = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("span", "font", "div", "s", "strike", "u")
	p.AllowAttrs("style").OnElements("p", "div", "span", "li", "ol", "ul", "b", "strong", "i", "em", "u", "s", "strike", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowStyles("color", "background-color", "text-align", "font-weight", "font-style", "text-decoration", "font-size").Globally()
	p.AllowAttrs("align").Matching(regexp.MustCompile(`^(?i)(left|right|center|justify)$`)).OnElements("p", "div", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("color").Matching(fontColor).OnElements("font")
	return p
}

// Sanitize strips scripts, event handlers and unknown markup while keeping the
// formatting the editor toolbar can produce.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// plainText returns the visible text of html with one line per block element.
func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	body := doc.Find("body")
	body.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(newline())
	})
	body.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendNodes(newline())
	})
	return body.Text()
}

func newline() *nethtml.Node {
	return &nethtml.Node{Type: nethtml.TextNode, Data: "\n"}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}

// ExtractTitle derives a note title from the first line of its text.
func ExtractTitle(html string) string {
	text := strings.TrimSpace(plainText(html))
	if text == "" {
		return models.UntitledNoteTitle
	}

	firstLine, _, _ := strings.Cut(text, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" {
		return models.UntitledNoteTitle
	}

	if utf8.RuneCountInString(firstLine) > maxTitleRunes {
		runes := []rune(firstLine)
		return string(runes[:maxTitleRunes]) + "..."
	}
	return firstLine
}

// IsBlank reports whether html carries no text a user typed.
func IsBlank(html string) bool {
	switch strings.TrimSpace(html) {
	case "", "<p></p>", "<p><br></p>":
		return true
	}
	return strings.TrimSpace(plainText(html)) == ""
}

// Filter keeps notes whose title or content contains query, ignoring case.
// An empty query keeps everything. Order is preserved.
func Filter(notes []models.Note, query string) []models.Note {
	if query == "" {
		out := make([]models.Note, len(notes))
		copy(out, notes)
		return out
	}
	q := strings.ToLower(query)

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}
