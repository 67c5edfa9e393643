package domain

import "time"

// HtmlArtifact records one generated output file: either a per-session
// page or the singleton combined page.
type HtmlArtifact struct {
	ID           int64
	ProjectID    int64
	OutputPath   string // relative to the project directory
	GeneratedAt  time.Time
	SessionID    string // empty for the combined artifact
	MessageCount int
	Version      string
}
