// Package markdown implements render.Renderer by assembling Markdown
// text directly: a table of contents per output, and a block-quote
// convention that protects nested Markdown-looking content (tool
// output, code fences within a tool result) from being reinterpreted
// by a downstream Markdown processor.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/render"
)

// VersionComment is the machine-readable marker embedded near the top of
// every generated Markdown file.
func VersionComment(version string) string {
	return fmt.Sprintf("<!-- Generated by claude-code-log v%s -->", version)
}

// Renderer is the Markdown implementation of render.Renderer.
type Renderer struct{}

// New returns a Markdown Renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderCombined implements render.Renderer.
func (r *Renderer) RenderCombined(data render.CombinedData) (string, error) {
	var b strings.Builder
	b.WriteString(VersionComment(data.Version))
	b.WriteString("\n\n")
	b.WriteString("# " + data.Project.Path + "\n\n")
	if data.Config.ShowStats {
		writeStats(&b, data.Project)
	}
	writeNavigation(&b, data.Navigation)
	roots := rootsOf(data.Messages)
	writeTOC(&b, roots)
	b.WriteString("\n")
	for _, m := range roots {
		writeMessage(&b, m, 0)
	}
	writePagination(&b, data.Pagination)
	return b.String(), nil
}

// RenderSession implements render.Renderer.
func (r *Renderer) RenderSession(data render.SessionData) (string, error) {
	var b strings.Builder
	b.WriteString(VersionComment(data.Version))
	b.WriteString("\n\n")
	b.WriteString("# " + data.Session.Summary + "\n\n")
	b.WriteString(fmt.Sprintf("%s &ndash; %s &middot; %d messages\n\n",
		data.Session.FirstTimestamp, data.Session.LastTimestamp, data.Session.MessageCount))
	roots := rootsOf(data.Messages)
	writeTOC(&b, roots)
	b.WriteString("\n")
	for _, m := range roots {
		writeMessage(&b, m, 0)
	}
	return b.String(), nil
}

// RenderProjectIndex implements render.Renderer.
func (r *Renderer) RenderProjectIndex(data render.ProjectIndexData) (string, error) {
	var b strings.Builder
	b.WriteString(VersionComment(data.Version))
	b.WriteString("\n\n# Projects\n\n")
	for _, p := range data.Projects {
		b.WriteString(fmt.Sprintf("- [%s](%s) &mdash; %d messages, %s &ndash; %s\n",
			p.DisplayName, p.CombinedPath, p.Project.TotalMessages,
			p.Project.EarliestTimestamp, p.Project.LatestTimestamp))
	}
	return b.String(), nil
}

func rootsOf(messages []*domain.TemplateMessage) []*domain.TemplateMessage {
	var roots []*domain.TemplateMessage
	for _, m := range messages {
		if len(m.Ancestry) == 0 {
			roots = append(roots, m)
		}
	}
	return roots
}

func writeStats(b *strings.Builder, p domain.Project) {
	b.WriteString(fmt.Sprintf("> %d messages &middot; %d input tokens &middot; %d output tokens &middot; %s &ndash; %s\n\n",
		p.TotalMessages, p.TotalInput, p.TotalOutput, p.EarliestTimestamp, p.LatestTimestamp))
}

func writeNavigation(b *strings.Builder, entries []domain.NavigationEntry) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("## Sessions\n\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("- [%s](session-%s.md) &mdash; %s &mdash; %s\n", e.Summary, e.SessionID, e.TimestampRange, e.TokenSummary))
		if e.Preview != "" {
			b.WriteString("  > " + blockQuoteEscape(e.Preview) + "\n")
		}
	}
	b.WriteString("\n")
}

func writePagination(b *strings.Builder, p *render.Pagination) {
	if p == nil {
		return
	}
	b.WriteString(fmt.Sprintf("\n---\n\nPage %d of %d", p.PageNumber, p.TotalPages))
	if p.PrevPath != "" {
		b.WriteString(fmt.Sprintf(" &middot; [Previous](%s)", p.PrevPath))
	}
	b.WriteString("\n<!-- PAGINATION_NEXT_LINK_START -->\n")
	if p.NextPath != "" {
		class := "page-nav-link next"
		if p.NextHidden {
			class += " last-page"
		}
		b.WriteString(fmt.Sprintf(`<a href="%s" class="%s">Next &rarr;</a>`, p.NextPath, class))
		b.WriteString("\n")
	}
	b.WriteString("<!-- PAGINATION_NEXT_LINK_END -->\n")
}

// writeTOC lists each root message's heading (children are not listed),
// so long transcripts get a jump table before the full body.
func writeTOC(b *strings.Builder, roots []*domain.TemplateMessage) {
	if len(roots) == 0 {
		return
	}
	b.WriteString("## Contents\n\n")
	for _, m := range roots {
		writeTOCEntry(b, m)
	}
	b.WriteString("\n")
}

func writeTOCEntry(b *strings.Builder, m *domain.TemplateMessage) {
	label := tocLabel(m)
	b.WriteString(fmt.Sprintf("- [%s](#%s)\n", label, m.MessageID))
}

func tocLabel(m *domain.TemplateMessage) string {
	if m.IsSessionHeader {
		return m.SessionSummary
	}
	if m.ToolName != "" {
		return string(m.Type) + ": " + m.ToolName
	}
	return string(m.Type) + " @ " + m.DisplayTimestamp
}

// writeMessage renders one message and recurses into its children,
// depth controlling heading level (capped at 6, Markdown's maximum).
func writeMessage(b *strings.Builder, m *domain.TemplateMessage, depth int) {
	level := depth + 2
	if level > 6 {
		level = 6
	}
	heading := strings.Repeat("#", level)

	if m.IsSessionHeader {
		fmt.Fprintf(b, "%s <a id=\"%s\"></a>%s\n\n", heading, m.MessageID, m.SessionSummary)
	} else {
		fmt.Fprintf(b, "%s <a id=\"%s\"></a>%s &mdash; %s\n\n", heading, m.MessageID, m.Type, m.DisplayTimestamp)
		if m.IsPaired && m.PairDuration != "" {
			b.WriteString("_" + m.PairDuration + "_\n\n")
		}
		text := m.RawTextContent
		if m.DedupNotice != "" {
			text = m.DedupNotice
		}
		if text != "" {
			writeBlockQuoted(b, text)
		}
		if m.ToolName != "" {
			b.WriteString("`" + m.ToolName + "`\n\n")
		}
		if m.ImageSource != "" {
			b.WriteString("![attached image](" + m.ImageSource + ")\n\n")
		}
		if m.HasChildren {
			b.WriteString("_" + m.ChildrenLabel() + " (" + strconv.Itoa(m.TotalDescendantsCount) + " total: " + m.DescendantsLabel() + ")_\n\n")
		}
	}

	for _, child := range m.Children {
		writeMessage(b, child, depth+1)
	}
}

// writeBlockQuoted wraps arbitrary message text in a Markdown block
// quote so headings, fences, or lists embedded in tool output cannot be
// misread as structural Markdown of the surrounding document; a ">" that
// starts any line after the first is backslash-escaped so it reads as a
// literal character rather than a nested block quote.
func writeBlockQuoted(b *strings.Builder, text string) {
	escaped := blockQuoteEscape(text)
	for _, line := range strings.Split(escaped, "\n") {
		b.WriteString("> " + line + "\n")
	}
	b.WriteString("\n")
}

func blockQuoteEscape(text string) string {
	return strings.ReplaceAll(text, "\n>", "\n\\>")
}
