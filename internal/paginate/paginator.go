// Package paginate assigns a Project's Sessions to numbered output pages
// and patches the cross-page "Next" navigation link in place once a
// later page is discovered to exist.
package paginate

import (
	"fmt"
	"sort"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// PageOutputPath returns the output filename for a 1-based page number:
// page 1 keeps the conventional combined-transcripts name so a
// single-page project's URL never changes when it later grows a second
// page; page N>1 gets a "_N" suffix.
func PageOutputPath(number int, ext string) string {
	if number <= 1 {
		return "combined_transcripts." + ext
	}
	return fmt.Sprintf("combined_transcripts_%d.%s", number, ext)
}

// Assign groups sessions into pages without ever splitting a session
// across two pages. Sessions are first sorted chronologically by first
// timestamp. A page accumulates sessions until its running message
// count exceeds pageSize, at which point the session that pushed it
// over stays as the last entry on that page and a new page begins. A
// single session larger than pageSize therefore closes whichever page
// it lands on, and no later session joins it there.
func Assign(sessions []domain.Session, pageSize int) [][]domain.Session {
	if len(sessions) == 0 {
		return nil
	}
	ordered := make([]domain.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FirstTimestamp < ordered[j].FirstTimestamp
	})

	var pages [][]domain.Session
	var current []domain.Session
	sum := 0
	for _, sess := range ordered {
		current = append(current, sess)
		sum += sess.MessageCount
		if sum > pageSize {
			pages = append(pages, current)
			current = nil
			sum = 0
		}
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// BuildPages turns an Assign grouping into persistable Page and
// PageSession rows, numbered densely starting at 1.
func BuildPages(projectID int64, groups [][]domain.Session, pageSize int, ext, version string) ([]domain.Page, [][]domain.PageSession) {
	pages := make([]domain.Page, 0, len(groups))
	pageSessions := make([][]domain.PageSession, 0, len(groups))

	for i, group := range groups {
		number := i + 1
		page := domain.Page{
			ProjectID:      projectID,
			Number:         number,
			OutputPath:     PageOutputPath(number, ext),
			PageSizeConfig: pageSize,
			Version:        version,
		}
		sessRows := make([]domain.PageSession, 0, len(group))
		for pos, sess := range group {
			page.MessageCount += sess.MessageCount
			if page.FirstTimestamp == "" || sess.FirstTimestamp < page.FirstTimestamp {
				page.FirstTimestamp = sess.FirstTimestamp
			}
			if sess.LastTimestamp > page.LastTimestamp {
				page.LastTimestamp = sess.LastTimestamp
			}
			if pos == 0 {
				page.FirstSessionID = sess.SessionID
			}
			page.LastSessionID = sess.SessionID
			sessRows = append(sessRows, domain.PageSession{SessionID: sess.SessionID, Position: pos})
		}
		pages = append(pages, page)
		pageSessions = append(pageSessions, sessRows)
	}
	return pages, pageSessions
}

// OutputPathsFor returns every output path a set of Pages occupies, used
// to clean up stale files when a page_size change invalidates the
// previous layout wholesale.
func OutputPathsFor(pages []domain.Page) []string {
	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.OutputPath
	}
	return paths
}
