// Package render defines the format-neutral contract the Builder's
// output is handed to: three entry points (combined/single-file,
// per-session, project-index), each returning rendered text for its
// caller to write to disk. Concrete renderers live in the html and
// markdown subpackages.
package render

import (
	"github.com/brianly1003/claude-code-log/internal/config"
	"github.com/brianly1003/claude-code-log/internal/domain"
)

// Renderer turns Builder output into displayable text.
type Renderer interface {
	// RenderCombined renders one page (or the whole project, if it fits
	// on a single page) of the combined transcript view.
	RenderCombined(data CombinedData) (string, error)
	// RenderSession renders a single Session's transcript.
	RenderSession(data SessionData) (string, error)
	// RenderProjectIndex renders the top-level listing across Projects.
	RenderProjectIndex(data ProjectIndexData) (string, error)
}

// Pagination carries the cross-page navigation state for one page of a
// paginated combined view. NextHidden mirrors the in-place "last-page"
// class the Paginator patches once a following page appears.
type Pagination struct {
	PageNumber int
	TotalPages int
	PrevPath   string
	NextPath   string
	NextHidden bool
}

// CombinedData is what RenderCombined needs to produce one page of the
// combined transcript.
type CombinedData struct {
	Project    domain.Project
	Messages   []*domain.TemplateMessage
	Navigation []domain.NavigationEntry
	Config     config.RenderConfig
	Pagination *Pagination // nil for a single-page, unpaginated project
	Version    string
}

// SessionData is what RenderSession needs for one Session's own page.
type SessionData struct {
	Project  domain.Project
	Session  domain.Session
	Messages []*domain.TemplateMessage
	Config   config.RenderConfig
	Version  string
}

// ProjectSummary is one row of the project-index listing.
type ProjectSummary struct {
	Project      domain.Project
	DisplayName  string
	CombinedPath string
}

// ProjectIndexData is what RenderProjectIndex needs.
type ProjectIndexData struct {
	Projects []ProjectSummary
	Version  string
}
