// Package session holds the per-dataset chat state: the loaded table, its
// role map, the dataset summary, and the running conversation. Passing a
// Session explicitly (rather than ambient globals) keeps retrieval callable
// from tests and from multiple concurrent sessions.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/findsight/findsight-cli/internal/ai"
	"github.com/findsight/findsight-cli/internal/analysis"
	"github.com/findsight/findsight-cli/internal/table"
)

// Turn is one message in the conversation.
type Turn struct {
	ID      string
	Role    string // ai.RoleUser or ai.RoleAssistant
	Content string
	// RetrievalInfo is the disclosure line attached to assistant turns.
	RetrievalInfo string
}

// Session is the state for one loaded findings dataset.
type Session struct {
	ID      string
	Table   *table.Table
	Roles   table.RoleMap
	Summary string
	History []Turn
}

// New detects roles, summarizes the dataset and opens a fresh session.
func New(t *table.Table) *Session {
	roles := table.DetectRoles(t)
	return &Session{
		ID:      uuid.NewString(),
		Table:   t,
		Roles:   roles,
		Summary: analysis.Summarize(t, roles),
	}
}

// ApplyOverrides replaces auto-detected role columns with user choices and
// refreshes the summary. An override naming an unknown column is rejected;
// an empty value unsets the role.
func (s *Session) ApplyOverrides(overrides map[table.Role]string) error {
	for role, col := range overrides {
		if col == "" {
			delete(s.Roles, role)
			continue
		}
		if s.Table.ColumnIndex(col) < 0 {
			return fmt.Errorf("override for %s: no column %q in table", role, col)
		}
		s.Roles[role] = col
	}
	if err := s.Roles.Validate(s.Table); err != nil {
		return err
	}
	s.Summary = analysis.Summarize(s.Table, s.Roles)
	return nil
}

// Append records a turn.
func (s *Session) Append(role, content, retrievalInfo string) {
	s.History = append(s.History, Turn{
		ID:            uuid.NewString(),
		Role:          role,
		Content:       content,
		RetrievalInfo: retrievalInfo,
	})
}

// RecentMessages returns the last maxExchanges user/assistant pairs as chat
// messages, oldest first, for inclusion in the answer prompt.
func (s *Session) RecentMessages(maxExchanges int) []ai.Message {
	n := maxExchanges * 2
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	out := make([]ai.Message, 0, n)
	for _, t := range s.History[start:] {
		if t.Role != ai.RoleUser && t.Role != ai.RoleAssistant {
			continue
		}
		out = append(out, ai.Message{Role: t.Role, Content: t.Content})
	}
	return out
}
