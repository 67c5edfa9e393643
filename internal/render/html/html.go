// Package html implements render.Renderer by expanding Go html/template
// templates over Builder output, embedding the version comment and
// pagination sentinels the Freshness Engine and Paginator depend on.
package html

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/render"
)

// VersionComment is the machine-readable marker embedded near the top of
// every generated HTML file, per the external-interface contract.
func VersionComment(version string) string {
	return fmt.Sprintf("<!-- Generated by claude-code-log v%s -->", version)
}

// Renderer is the HTML implementation of render.Renderer.
type Renderer struct {
	tmpl *template.Template
}

// New parses the package's templates once for reuse across renders.
func New() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("root").Funcs(funcMap()).Parse(allTemplates))}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"childrenLabel":    func(m *domain.TemplateMessage) string { return m.ChildrenLabel() },
		"descendantsLabel": func(m *domain.TemplateMessage) string { return m.DescendantsLabel() },
		"indent":           func(ancestry []string) int { return len(ancestry) },
	}
}

// RenderCombined implements render.Renderer.
func (r *Renderer) RenderCombined(data render.CombinedData) (string, error) {
	var buf strings.Builder
	buf.WriteString(VersionComment(data.Version))
	buf.WriteByte('\n')
	if err := r.tmpl.ExecuteTemplate(&buf, "combined", data); err != nil {
		return "", fmt.Errorf("render combined: %w", err)
	}
	return buf.String(), nil
}

// RenderSession implements render.Renderer.
func (r *Renderer) RenderSession(data render.SessionData) (string, error) {
	var buf strings.Builder
	buf.WriteString(VersionComment(data.Version))
	buf.WriteByte('\n')
	if err := r.tmpl.ExecuteTemplate(&buf, "session", data); err != nil {
		return "", fmt.Errorf("render session: %w", err)
	}
	return buf.String(), nil
}

// RenderProjectIndex implements render.Renderer.
func (r *Renderer) RenderProjectIndex(data render.ProjectIndexData) (string, error) {
	var buf strings.Builder
	buf.WriteString(VersionComment(data.Version))
	buf.WriteByte('\n')
	if err := r.tmpl.ExecuteTemplate(&buf, "index", data); err != nil {
		return "", fmt.Errorf("render index: %w", err)
	}
	return buf.String(), nil
}

const allTemplates = `
{{define "stats"}}
{{if .Config.ShowStats}}
<div class="stats">
  <span class="stat">{{.Project.TotalMessages}} messages</span>
  <span class="stat">{{.Project.TotalInput}} input tokens</span>
  <span class="stat">{{.Project.TotalOutput}} output tokens</span>
  <span class="stat">{{.Project.EarliestTimestamp}} &ndash; {{.Project.LatestTimestamp}}</span>
</div>
{{end}}
{{end}}

{{define "message"}}
<div class="message message-{{.Type}}" id="{{.MessageID}}" style="margin-left: {{indent .Ancestry}}em;">
  {{if .IsSessionHeader}}
  <h2 class="session-header">{{.SessionSummary}}</h2>
  {{else}}
  <div class="message-meta">
    <span class="message-type">{{.Type}}</span>
    <span class="message-time">{{.DisplayTimestamp}}</span>
    {{if .IsPaired}}<span class="pair-duration">{{.PairDuration}}</span>{{end}}
  </div>
  <div class="message-body">
    {{if .DedupNotice}}<p class="dedup-notice">{{.DedupNotice}}</p>
    {{else}}<pre class="message-text">{{.RawTextContent}}</pre>{{end}}
    {{if .ToolName}}<div class="tool-call"><code>{{.ToolName}}</code></div>{{end}}
    {{if .ImageSource}}<img src="{{.ImageSource}}" alt="attached image" class="message-image">{{end}}
  </div>
  {{if .HasChildren}}<div class="children-summary">{{childrenLabel .}} ({{.TotalDescendantsCount}} total: {{descendantsLabel .}})</div>{{end}}
  {{end}}
</div>
{{range .Children}}{{template "message" .}}{{end}}
{{end}}

{{define "navigation"}}
{{if .}}
<nav class="session-nav">
  <ul>
  {{range .}}
    <li><a href="session-{{.SessionID}}.html">{{.Summary}}</a> <span class="nav-range">{{.TimestampRange}}</span> <span class="nav-tokens">{{.TokenSummary}}</span>
    {{if .Preview}}<p class="nav-preview">{{.Preview}}</p>{{end}}
    </li>
  {{end}}
  </ul>
</nav>
{{end}}
{{end}}

{{define "pagination"}}
{{if .}}
<div class="page-navigation">
  <span class="page-label">Page {{.PageNumber}} of {{.TotalPages}}</span>
  {{if .PrevPath}}<a href="{{.PrevPath}}" class="page-nav-link prev">&larr; Previous</a>{{end}}
  <!-- PAGINATION_NEXT_LINK_START -->
  {{if .NextPath}}<a href="{{.NextPath}}" class="page-nav-link next{{if .NextHidden}} last-page{{end}}">Next &rarr;</a>{{end}}
  <!-- PAGINATION_NEXT_LINK_END -->
</div>
{{end}}
{{end}}

{{define "combined"}}
<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Project.Path}} &mdash; transcripts</title></head>
<body>
<h1>{{.Project.Path}}</h1>
{{template "stats" .}}
{{template "navigation" .Navigation}}
<div class="messages">
{{range .Messages}}{{if not .Ancestry}}{{template "message" .}}{{end}}{{end}}
</div>
{{template "pagination" .Pagination}}
</body>
</html>
{{end}}

{{define "session"}}
<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Session.SessionID}} &mdash; {{.Project.Path}}</title></head>
<body>
<h1>{{.Session.Summary}}</h1>
<p class="session-meta">{{.Session.FirstTimestamp}} &ndash; {{.Session.LastTimestamp}} &middot; {{.Session.MessageCount}} messages</p>
<div class="messages">
{{range .Messages}}{{if not .Ancestry}}{{template "message" .}}{{end}}{{end}}
</div>
</body>
</html>
{{end}}

{{define "index"}}
<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>claude-code-log projects</title></head>
<body>
<h1>Projects</h1>
<ul class="project-list">
{{range .Projects}}
  <li><a href="{{.CombinedPath}}">{{.DisplayName}}</a>
    <span class="nav-range">{{.Project.EarliestTimestamp}} &ndash; {{.Project.LatestTimestamp}}</span>
    <span class="nav-tokens">{{.Project.TotalMessages}} messages</span>
  </li>
{{end}}
</ul>
</body>
</html>
{{end}}
`
