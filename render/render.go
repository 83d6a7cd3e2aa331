// Package render prints feed items to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/scipunch/packard/fetcher/types"
)

// MaxDescription is the number of characters of a description that are shown
const MaxDescription = 256

const dateLayout = "2006-01-02 15:04:05 MST"

// Printer writes items as a styled headline list
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer

	marker lipgloss.Style
	title  lipgloss.Style
	desc   lipgloss.Style
	date   lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		renderer: r,
		marker:   r.NewStyle().Bold(true),
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		desc:     r.NewStyle().Italic(true).Faint(true),
		date:     r.NewStyle().Faint(true),
	}
}

// Print writes every item followed by a blank line
func (p *Printer) Print(items []types.FeedItem) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(p.w, p.Format(item)); err != nil {
			return fmt.Errorf("failed to print item with %w", err)
		}
	}
	return nil
}

// Format renders one item as title, description and date lines
func (p *Printer) Format(item types.FeedItem) string {
	title := p.title.Render(item.Title)
	if p.renderer.ColorProfile() != termenv.Ascii && item.Link != types.NoLink {
		title = termenv.Hyperlink(item.Link, title)
	}

	return fmt.Sprintf("%s %s\n%s\n%s\n",
		p.marker.Render(">"),
		title,
		p.desc.Render(Truncate(StripHTML(item.Description), MaxDescription)),
		p.date.Render(item.Published.UTC().Format(dateLayout)),
	)
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
// Input that cannot be parsed is returned unchanged.
func StripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate keeps the first limit characters of s, appending "..." when anything was cut
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
