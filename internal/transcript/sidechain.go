package transcript

import "github.com/brianly1003/claude-code-log/internal/domain"

// MarkSidechain stamps every record loaded from an agent-<id> sibling
// file with its owning AgentID and the Sidechain flag, since sidechain
// files do not always set isSidechain on every line themselves.
func MarkSidechain(records []domain.Record, agentID string) {
	for i := range records {
		records[i].Sidechain = true
		if records[i].AgentID == "" {
			records[i].AgentID = agentID
		}
	}
}
