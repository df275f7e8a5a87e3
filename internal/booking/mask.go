package booking

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaskedText replaces any property count shown by the search widget.
const MaskedText = "Properties available"

var (
	countDetectors = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+\s+of\s+\d+\s+propert`),
		regexp.MustCompile(`(?i)showing\s+\d+\s+propert`),
		regexp.MustCompile(`(?i)\d+\s+propert.*found`),
	}
	countReplacers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+\s+of\s+\d+\s+propert(?:y|ies)(\s+available)?`),
		regexp.MustCompile(`(?i)showing\s+\d+\s+propert(?:y|ies)`),
		regexp.MustCompile(`(?i)\d+\s+propert(?:y|ies)\s+found`),
		regexp.MustCompile(`(?i)\d+\s+propert(?:y|ies)\s+match`),
	}
	// leaf elements whose whole text is swapped when it shows a count
	leafAtoms = map[atom.Atom]bool{
		atom.Span: true, atom.Div: true, atom.P: true,
		atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	}
)

// Masker hides the provider's property counts. Every operation is idempotent:
// masked output contains no digits for the patterns to match again.
type Masker struct{}

// Detect reports whether text shows a property count.
func (Masker) Detect(text string) bool {
	for _, re := range countDetectors {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Rewrite replaces count phrases in text. Text without a count is returned unchanged.
func (m Masker) Rewrite(text string) string {
	if !m.Detect(text) {
		return text
	}
	for _, re := range countReplacers {
		text = re.ReplaceAllString(text, MaskedText)
	}
	return text
}

// MaskHTML parses a document from r, masks its text and renders it to w.
// It returns the number of nodes changed.
func (m Masker) MaskHTML(w io.Writer, r io.Reader) (int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("booking: parse html: %w", err)
	}
	changed := m.MaskNode(doc)
	if err := html.Render(w, doc); err != nil {
		return changed, fmt.Errorf("booking: render html: %w", err)
	}
	return changed, nil
}

// MaskBytes is MaskHTML over an in-memory document.
func (m Masker) MaskBytes(page []byte) ([]byte, int, error) {
	var buf bytes.Buffer
	buf.Grow(len(page))
	n, err := m.MaskHTML(&buf, bytes.NewReader(page))
	if err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), n, nil
}

// MaskNode rewrites text nodes under n in place, then swaps the text of
// leaf elements that still show a count.
func (m Masker) MaskNode(n *html.Node) int {
	changed := 0
	var walkText func(*html.Node)
	walkText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			if out := m.Rewrite(n.Data); out != n.Data {
				n.Data = out
				changed++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkText(c)
		}
	}
	walkText(n)

	var walkLeaves func(*html.Node)
	walkLeaves = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if leafAtoms[n.DataAtom] && !hasElementChild(n) {
				text := strings.TrimSpace(textContent(n))
				if text != "" && text != MaskedText && m.Detect(text) {
					for c := n.FirstChild; c != nil; {
						next := c.NextSibling
						n.RemoveChild(c)
						c = next
					}
					n.AppendChild(&html.Node{Type: html.TextNode, Data: MaskedText})
					changed++
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkLeaves(c)
		}
	}
	walkLeaves(n)
	return changed
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
