package session

import (
	"strings"
	"testing"

	"github.com/findsight/findsight-cli/internal/ai"
	"github.com/findsight/findsight-cli/internal/table"
)

func newFixture(t *testing.T) *Session {
	t.Helper()
	tab, err := table.ReadCSV(strings.NewReader(
		"date,asset,status,finding\n"+
			"2024-01-05,P-101,Open,Seal leak on discharge side\n"+
			"2024-02-10,K-201,Closed,Vibration high at second stage\n"), "findings.csv")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return New(tab)
}

func TestNewDetectsRolesAndSummarizes(t *testing.T) {
	s := newFixture(t)
	if s.ID == "" {
		t.Error("session has no id")
	}
	if got := s.Roles.Column(table.RoleAsset); got != "asset" {
		t.Errorf("asset role = %q", got)
	}
	if got := s.Roles.Column(table.RoleFinding); got != "finding" {
		t.Errorf("finding role = %q", got)
	}
	if !strings.Contains(s.Summary, "Dataset: 2 rows, 4 columns.") {
		t.Errorf("summary = %q", s.Summary)
	}
}

func TestApplyOverrides(t *testing.T) {
	s := newFixture(t)
	err := s.ApplyOverrides(map[table.Role]string{
		table.RoleAsset:  "finding", // deliberate remap
		table.RoleStatus: "",        // unset
	})
	if err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if got := s.Roles.Column(table.RoleAsset); got != "finding" {
		t.Errorf("asset role = %q, want override", got)
	}
	if got := s.Roles.Column(table.RoleStatus); got != "" {
		t.Errorf("status role = %q, want unset", got)
	}
	// Summary reflects the new role map: no status column, new asset counts.
	if strings.Contains(s.Summary, "Status breakdown") {
		t.Errorf("summary still has status section:\n%s", s.Summary)
	}
}

func TestApplyOverridesUnknownColumn(t *testing.T) {
	s := newFixture(t)
	if err := s.ApplyOverrides(map[table.Role]string{table.RoleDate: "recorded_on"}); err == nil {
		t.Fatal("unknown column accepted")
	}
	// Existing role map is not corrupted by the failed override attempt on
	// roles processed before the bad one.
	if err := s.Roles.Validate(s.Table); err != nil {
		t.Errorf("role map invalid after failed override: %v", err)
	}
}

func TestRecentMessages(t *testing.T) {
	s := newFixture(t)
	for i := 0; i < 5; i++ {
		s.Append(ai.RoleUser, "q", "")
		s.Append(ai.RoleAssistant, "a", "retrieval: keyword")
	}
	msgs := s.RecentMessages(3)
	if len(msgs) != 6 {
		t.Fatalf("messages = %d, want 6", len(msgs))
	}
	if msgs[0].Role != ai.RoleUser || msgs[5].Role != ai.RoleAssistant {
		t.Errorf("pair ordering broken: %v", msgs)
	}

	// Shorter history than the window returns everything.
	s2 := newFixture(t)
	s2.Append(ai.RoleUser, "only question", "")
	msgs = s2.RecentMessages(3)
	if len(msgs) != 1 || msgs[0].Content != "only question" {
		t.Errorf("messages = %v", msgs)
	}
}
