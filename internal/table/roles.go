package table

import (
	"fmt"
	"strings"
)

// Role is a semantic meaning assigned to a raw column name.
type Role string

const (
	RoleFinding  Role = "finding"
	RoleAsset    Role = "asset"
	RoleLocation Role = "location"
	RoleDate     Role = "date"
	RoleStatus   Role = "status"
)

// AllRoles lists roles in detection order. Earlier roles claim columns first.
var AllRoles = []Role{RoleFinding, RoleAsset, RoleLocation, RoleDate, RoleStatus}

// RoleMap assigns column names to roles. A missing or empty entry means the
// role is unset; callers treat unset roles as feature-unavailable.
type RoleMap map[Role]string

// Column returns the column name for a role, or "" when unset.
func (m RoleMap) Column(r Role) string { return m[r] }

// Validate checks that every populated role names a real column.
func (m RoleMap) Validate(t *Table) error {
	for role, col := range m {
		if col == "" {
			continue
		}
		if t.ColumnIndex(col) < 0 {
			return fmt.Errorf("role %s mapped to unknown column %q", role, col)
		}
	}
	return nil
}

// Candidate name fragments per role, highest priority first. Matching is
// over normalized names (lowercased, underscores collapsed to spaces).
var roleCandidates = map[Role][]string{
	RoleFinding: {
		"finding", "annotation", "observation", "comment", "description",
		"text", "note", "remarks", "detail",
	},
	RoleAsset: {
		"asset", "tag", "equipment", "unit", "machine", "device",
	},
	RoleLocation: {
		"functional location", "floc", "location", "area", "plant",
	},
	RoleDate: {
		"date", "timestamp", "created", "recorded", "reported", "raised",
	},
	RoleStatus: {
		"status", "state", "resolution", "resolved", "open", "closed",
	},
}

func normalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// DetectColumnRoles maps column names to roles by name patterns alone.
// For each role an exact normalized match is preferred, then the first
// column whose name contains a candidate fragment. A column claimed by an
// earlier role is never reused. Deterministic and idempotent.
func DetectColumnRoles(columns []string) RoleMap {
	norm := make([]string, len(columns))
	for i, c := range columns {
		norm[i] = normalizeColumn(c)
	}
	claimed := make(map[int]bool)
	out := RoleMap{}

	match := func(role Role) int {
		for _, cand := range roleCandidates[role] {
			for i, n := range norm {
				if !claimed[i] && n == cand {
					return i
				}
			}
		}
		for _, cand := range roleCandidates[role] {
			for i, n := range norm {
				if !claimed[i] && strings.Contains(n, cand) {
					return i
				}
			}
		}
		return -1
	}

	for _, role := range AllRoles {
		if i := match(role); i >= 0 {
			claimed[i] = true
			out[role] = columns[i]
		}
	}
	return out
}

// DetectRoles detects roles over a loaded table. On top of the name
// heuristics it fills an unset finding role with the first unclaimed
// text-typed column: a findings table always has one dominant free-text
// column even when its header matches no known pattern.
func DetectRoles(t *Table) RoleMap {
	out := DetectColumnRoles(t.Columns)
	if out[RoleFinding] != "" {
		return out
	}
	claimed := make(map[string]bool)
	for _, col := range out {
		claimed[col] = true
	}
	for i, col := range t.Columns {
		if claimed[col] {
			continue
		}
		if t.ColumnKind(i) == KindText {
			out[RoleFinding] = col
			break
		}
	}
	return out
}
