package newsletter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	DefaultTitleSelector     = "h1"
	DefaultContainerSelector = "tbody"
)

// ExtractionError reports a film title whose enclosing container could
// not be located. The rest of the document still extracts.
type ExtractionError struct {
	Title string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no enclosing container for film title %q", e.Title)
}

// Extractor locates film blocks in newsletter HTML. Each title node is
// matched with its nearest enclosing container element; the container's
// text becomes the block's lines.
type Extractor struct {
	titleSelector     string
	containerSelector string
}

func NewExtractor(titleSelector, containerSelector string) *Extractor {
	if titleSelector == "" {
		titleSelector = DefaultTitleSelector
	}
	if containerSelector == "" {
		containerSelector = DefaultContainerSelector
	}
	return &Extractor{
		titleSelector:     titleSelector,
		containerSelector: containerSelector,
	}
}

// Extract returns the film blocks of a newsletter in document order.
// A title without an enclosing container yields an *ExtractionError in
// the second return value and is skipped; sibling blocks are unaffected.
// Zero blocks on a well-formed document is a valid result, not an error.
func (e *Extractor) Extract(htmlBody string) ([]FilmBlock, []error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, []error{fmt.Errorf("failed to parse HTML document: %w", err)}
	}

	var blocks []FilmBlock
	var errs []error

	doc.Find(e.titleSelector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return
		}

		container := sel.Closest(e.containerSelector)
		if container.Length() == 0 {
			errs = append(errs, &ExtractionError{Title: title})
			return
		}

		blocks = append(blocks, FilmBlock{
			Title: title,
			Lines: blockLines(container),
		})
	})

	return blocks, errs
}

// ArchiveLink returns the first link pointing at the newsletter's web
// archive copy, or an empty string when the document carries none. The
// link serves as the newsletter's identity.
func (e *Extractor) ArchiveLink(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}

	link := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if isArchiveHref(href) {
			link = href
			return false
		}
		return true
	})

	return link
}

func isArchiveHref(href string) bool {
	if !strings.HasPrefix(href, "http") {
		return false
	}
	lower := strings.ToLower(href)
	return strings.Contains(lower, "archive") || strings.Contains(lower, "mailchi.mp") ||
		strings.Contains(lower, "campaign-archive")
}

// blockLines flattens a container to text lines. Text nodes join with
// spaces, <br> elements become line breaks, everything else is markup
// and contributes nothing.
func blockLines(container *goquery.Selection) []string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			b.WriteString(" ")
		case n.Type == html.ElementNode && n.Data == "br":
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, node := range container.Nodes {
		walk(node)
	}

	var lines []string
	for _, raw := range strings.Split(b.String(), "\n") {
		line := strings.TrimSpace(normalizeSpaces(raw))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
