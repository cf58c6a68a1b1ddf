package reading

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms are the elements that count as blocks, matched in document
// order, nested containers included.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Li: true, atom.Blockquote: true, atom.Div: true,
}

type textBlock struct {
	tag   string
	start int // first line
	lines []string
}

// TextDocument lays an HTML body out as wrapped terminal lines and exposes
// it as a BlockEnumerator. One line is LineHeight units tall. It is safe for
// concurrent use.
type TextDocument struct {
	mu         sync.Mutex
	blocks     []textBlock
	lines      []string
	scroll     int
	lineHeight float64
}

// ParseHTML renders body with lines wrapped at width columns.
func ParseHTML(body string, width int, lineHeight float64) (*TextDocument, error) {
	if width < 10 {
		width = 10
	}
	if lineHeight <= 0 {
		lineHeight = 1
	}

	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &TextDocument{lineHeight: lineHeight}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && blockAtoms[n.DataAtom] {
			text := strings.Join(strings.Fields(ownText(n)), " ")
			b := textBlock{tag: n.Data, start: len(d.lines)}
			if text != "" {
				b.lines = wrap(prefix(n.DataAtom)+text, width)
				d.lines = append(d.lines, b.lines...)
				d.lines = append(d.lines, "")
			}
			d.blocks = append(d.blocks, b)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(d.lines) > 0 {
		d.lines = d.lines[:len(d.lines)-1]
	}
	return d, nil
}

// ownText collects the text of n, skipping nested block elements, which
// contribute their own lines.
func ownText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				sb.WriteString(c.Data)
				sb.WriteByte(' ')
			case c.Type == html.ElementNode && c.DataAtom == atom.Br:
				sb.WriteByte(' ')
			case c.Type == html.ElementNode && (blockAtoms[c.DataAtom] || c.DataAtom == atom.Script || c.DataAtom == atom.Style):
			case c.Type == html.ElementNode:
				collect(c.FirstChild)
			}
		}
	}
	collect(n.FirstChild)
	return sb.String()
}

func prefix(a atom.Atom) string {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return "# "
	case atom.Li:
		return "- "
	case atom.Blockquote:
		return "> "
	default:
		return ""
	}
}

func wrap(text string, width int) []string {
	var (
		out  []string
		line strings.Builder
	)
	for _, w := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(w) > width {
			out = append(out, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		out = append(out, line.String())
	}
	return out
}

// Blocks implements BlockEnumerator. An empty document is never enumerable.
func (d *TextDocument) Blocks() ([]Block, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.blocks) == 0 {
		return nil, false
	}
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = Block{Top: float64(b.start-d.scroll) * d.lineHeight}
	}
	return out, true
}

// ScrollBy implements BlockEnumerator, rounding to whole lines.
func (d *TextDocument) ScrollBy(delta float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrollTo(d.scroll + int(math.Round(delta/d.lineHeight)))
}

func (d *TextDocument) scrollTo(line int) {
	maxLine := len(d.lines) - 1
	if line > maxLine {
		line = maxLine
	}
	if line < 0 {
		line = 0
	}
	d.scroll = line
}

// Page returns up to height lines starting at the current scroll line.
func (d *TextDocument) Page(height int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scroll >= len(d.lines) {
		return nil
	}
	end := min(d.scroll+height, len(d.lines))
	return append([]string(nil), d.lines[d.scroll:end]...)
}

// ScrollLines moves by n whole lines.
func (d *TextDocument) ScrollLines(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrollTo(d.scroll + n)
}

// Line returns the current scroll line and the total number of lines.
func (d *TextDocument) Line() (current, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scroll, len(d.lines)
}
