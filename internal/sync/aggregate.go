package sync

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/store"
)

// firstUserMessagePreviewLength caps the preview text stored per
// session, matching the FIRST_USER_MESSAGE_PREVIEW_LENGTH constant this
// behavior is ported from.
const firstUserMessagePreviewLength = 1000

func (sy *Synchronizer) recomputeAggregates(ctx context.Context, projectID int64, liveSessionIDs map[string]bool) error {
	records, err := sy.st.MessagesForProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load messages for aggregation: %w", err)
	}

	sessions := buildSessionAggregates(projectID, records)
	project := buildProjectAggregate(projectID, sessions)

	err = sy.st.WithTx(ctx, func(tx *sql.Tx) error {
		for _, sess := range sessions {
			if err := store.UpsertSession(ctx, tx, projectID, sess); err != nil {
				return err
			}
		}
		if err := store.MarkSessionsArchived(ctx, tx, projectID, liveSessionIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	return sy.st.UpdateProjectAggregates(ctx, project)
}

func buildSessionAggregates(projectID int64, records []domain.Record) []domain.Session {
	order := make([]string, 0)
	bySession := make(map[string]*domain.Session)
	cwdVotes := make(map[string]map[string]int)
	// Shared across every session, not reset per-session: a resumed
	// session can carry a copy of an earlier session's records, and the
	// same request_id must still be counted at most once project-wide.
	seenRequestIDs := make(map[string]bool)

	for _, rec := range records {
		if rec.SessionID == "" || rec.Sidechain {
			continue
		}
		sess, ok := bySession[rec.SessionID]
		if !ok {
			sess = &domain.Session{ProjectID: projectID, SessionID: rec.SessionID}
			bySession[rec.SessionID] = sess
			order = append(order, rec.SessionID)
			cwdVotes[rec.SessionID] = make(map[string]int)
		}

		sess.MessageCount++
		if rec.Timestamp != "" {
			if sess.FirstTimestamp == "" || rec.Timestamp < sess.FirstTimestamp {
				sess.FirstTimestamp = rec.Timestamp
			}
			if rec.Timestamp > sess.LastTimestamp {
				sess.LastTimestamp = rec.Timestamp
			}
		}
		if rec.Cwd != "" {
			cwdVotes[rec.SessionID][rec.Cwd]++
		}
		if rec.Type == domain.DiscSummary && rec.SummaryText != "" {
			sess.Summary = rec.SummaryText
		}
		if rec.Type == domain.DiscAssistant && rec.Usage != nil {
			if rec.RequestID == "" || !seenRequestIDs[rec.RequestID] {
				if rec.RequestID != "" {
					seenRequestIDs[rec.RequestID] = true
				}
				addUsage(sess, rec.Usage)
			}
		}
		if sess.FirstUserMessagePreview == "" && rec.Type == domain.DiscUser && !rec.Meta {
			text := rec.TextContent()
			if shouldUseAsSessionStarter(text) {
				sess.FirstUserMessagePreview = createSessionPreview(text)
			}
		}
	}

	out := make([]domain.Session, 0, len(order))
	for _, id := range order {
		sess := bySession[id]
		sess.Cwd = mostFrequentCwd(cwdVotes[id])
		out = append(out, *sess)
	}
	return out
}

func addUsage(sess *domain.Session, u *domain.Usage) {
	if u.InputTokens != nil {
		sess.TotalInput += *u.InputTokens
	}
	if u.OutputTokens != nil {
		sess.TotalOutput += *u.OutputTokens
	}
	if u.CacheCreationTokens != nil {
		sess.TotalCacheCreation += *u.CacheCreationTokens
	}
	if u.CacheReadTokens != nil {
		sess.TotalCacheRead += *u.CacheReadTokens
	}
}

// mostFrequentCwd picks the working directory that appeared most often
// across a session's messages; which of several equally frequent
// directories wins is not defined.
func mostFrequentCwd(votes map[string]int) string {
	best := ""
	bestCount := 0
	for cwd, count := range votes {
		if count > bestCount {
			best = cwd
			bestCount = count
		}
	}
	return best
}

func buildProjectAggregate(projectID int64, sessions []domain.Session) domain.Project {
	p := domain.Project{ID: projectID, Version: domain.CurrentVersion}
	for _, s := range sessions {
		p.TotalMessages += int64(s.MessageCount)
		p.TotalInput += s.TotalInput
		p.TotalOutput += s.TotalOutput
		p.TotalCacheCreation += s.TotalCacheCreation
		p.TotalCacheRead += s.TotalCacheRead
		if s.FirstTimestamp != "" && (p.EarliestTimestamp == "" || s.FirstTimestamp < p.EarliestTimestamp) {
			p.EarliestTimestamp = s.FirstTimestamp
		}
		if s.LastTimestamp > p.LatestTimestamp {
			p.LatestTimestamp = s.LastTimestamp
		}
	}
	return p
}

// shouldUseAsSessionStarter filters out the synthetic warmup/system
// messages Claude Code injects at session start so the preview reflects
// what the user actually typed.
func shouldUseAsSessionStarter(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "Warmup" {
		return false
	}
	if strings.HasPrefix(trimmed, "<command-name>") {
		return false
	}
	if strings.HasPrefix(trimmed, "Caveat:") {
		return false
	}
	return true
}

var ideTagPattern = regexp.MustCompile(`(?s)<ide_(?:selection|opened_file|diagnostics)>.*?</ide_(?:selection|opened_file|diagnostics)>`)

// createSessionPreview replaces every IDE-context tag block in a message,
// wherever it appears, with "[IDE context omitted]" before truncating it
// to firstUserMessagePreviewLength.
func createSessionPreview(text string) string {
	compacted := compactIDETagsForPreview(text)
	runes := []rune(compacted)
	if len(runes) <= firstUserMessagePreviewLength {
		return compacted
	}
	return string(runes[:firstUserMessagePreviewLength]) + "..."
}

func compactIDETagsForPreview(text string) string {
	return ideTagPattern.ReplaceAllString(text, "[IDE context omitted]")
}
