package builder

import (
	"fmt"
	"time"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// reorderPairs implements step 9: move each PairLast message to directly
// follow its PairFirst partner. Adjacent-rule pairs are already
// consecutive and are left untouched; indexed-rule pairs (tool_use to a
// tool_result emitted several records later, a slash-command whose
// originating system record appears earlier) are not, and this closes
// that gap so a renderer can fold the two into one collapsible block.
func reorderPairs(messages []*domain.TemplateMessage, partners partnerMap) []*domain.TemplateMessage {
	if len(partners) == 0 {
		return messages
	}

	isPartnerOf := make(map[*domain.TemplateMessage]*domain.TemplateMessage, len(partners))
	for first, last := range partners {
		isPartnerOf[last] = first
	}

	out := make([]*domain.TemplateMessage, 0, len(messages))
	placed := make(map[*domain.TemplateMessage]bool, len(partners))

	for _, m := range messages {
		if placed[m] {
			continue
		}
		if _, isLast := isPartnerOf[m]; isLast && placed[isPartnerOf[m]] {
			// Its first was emitted earlier in this pass, which emitted
			// this last right after it and marked it placed, so the
			// check above already skips it.
			continue
		}
		out = append(out, m)
		placed[m] = true
		if last, ok := partners[m]; ok && !placed[last] {
			out = append(out, last)
			placed[last] = true
		}
	}
	return out
}

// pairDuration formats the gap between a pair's two timestamps:
// sub-second gaps in milliseconds, sub-minute gaps to one decimal
// second, otherwise minutes and whole seconds.
func pairDuration(first, last string) string {
	if first == "" || last == "" {
		return ""
	}
	t1, err1 := time.Parse(time.RFC3339, first)
	t2, err2 := time.Parse(time.RFC3339, last)
	if err1 != nil || err2 != nil {
		return ""
	}
	d := t2.Sub(t1)
	if d < 0 {
		return ""
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		mins := int(d.Minutes())
		secs := int(d.Seconds()) - mins*60
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
}
