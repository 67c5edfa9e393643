package builder

import (
	"fmt"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// hierarchyLevel classifies a message's nesting depth contribution:
//
//	0  session headers
//	1  user messages (non-sidechain)
//	2  main assistant, main thinking, system commands/errors (anything not info/warning)
//	3  main tool-use, main tool-result, system info/warning
//	4  sidechain assistant and thinking
//	5  sidechain tool-use and tool-result
func hierarchyLevel(m *domain.TemplateMessage) int {
	if m.IsSessionHeader {
		return 0
	}
	sidechain := m.Modifiers.IsSidechain
	switch m.Type {
	case domain.TmplUser:
		return 1
	case domain.TmplAssistant, domain.TmplThinking:
		if sidechain {
			return 4
		}
		return 2
	case domain.TmplSystem:
		if m.SystemLevel != domain.SystemInfo && m.SystemLevel != domain.SystemWarning {
			return 2
		}
		return 3
	case domain.TmplToolUse, domain.TmplToolResult, domain.TmplBashInput, domain.TmplBashOutput, domain.TmplImage:
		if sidechain {
			return 5
		}
		return 3
	default:
		return 1
	}
}

// buildHierarchy implements step 11: assign each message a MessageID and
// an Ancestry chain using a level stack. A message at level N is a child
// of the most recently seen message at level N-1; the top of the stack
// for each level below N is recorded as its ancestry. Session headers
// reset the stack since a new session never nests under the previous
// session's messages.
func buildHierarchy(messages []*domain.TemplateMessage) {
	// stack[k] holds the most recent message whose hierarchyLevel is k+1;
	// a message at level L's ancestry is the current session header (level
	// 0) followed by stack[0:L-1], and it then becomes the new stack[L-1],
	// discarding anything deeper that can no longer be an ancestor of what
	// follows.
	var stack []*domain.TemplateMessage
	var header *domain.TemplateMessage
	counter := 0

	for _, m := range messages {
		if m.IsSessionHeader {
			stack = nil
			header = m
			m.MessageID = "session-" + m.SessionID
			m.Ancestry = nil
			continue
		}

		level := hierarchyLevel(m)
		if level > len(stack)+1 {
			level = len(stack) + 1
		}

		counter++
		m.MessageID = fmt.Sprintf("d-%d", counter)

		ancestry := make([]string, 0, level)
		if header != nil {
			ancestry = append(ancestry, header.MessageID)
		}
		for i := 0; i < level-1; i++ {
			ancestry = append(ancestry, stack[i].MessageID)
		}
		m.Ancestry = ancestry

		stack = append(stack[:level-1], m)
	}
}
