package location

import (
	"fmt"
	"sort"
)

// MergeGroups maps normalized location keys to umbrella group names. Keys that
// share a group are folded into one row in demand statistics.
type MergeGroups struct {
	byKey map[string]string
}

// DefaultMergeTable returns the built-in group table: each group name maps to
// the member keys it absorbs.
func DefaultMergeTable() map[string][]string {
	return map[string][]string{
		"亚瑟港":  {"亚", "亚(迅)", "亚(含)", "亚(不含)"},
		"布鲁尼岛": {"布", "布(美)"},
	}
}

// NewMergeGroups builds a MergeGroups from a group→members table.
// A nil table falls back to DefaultMergeTable. Returns an error if any key is
// claimed by more than one group, since that would double count bookings.
func NewMergeGroups(table map[string][]string) (*MergeGroups, error) {
	if table == nil {
		table = DefaultMergeTable()
	}
	byKey := make(map[string]string)
	for group, members := range table {
		for _, key := range members {
			if owner, ok := byKey[key]; ok && owner != group {
				return nil, fmt.Errorf("location key %q belongs to both group %q and group %q", key, owner, group)
			}
			byKey[key] = group
		}
	}
	return &MergeGroups{byKey: byKey}, nil
}

// GroupFor returns the umbrella group for a key, if any.
func (g *MergeGroups) GroupFor(key string) (string, bool) {
	if g == nil {
		return "", false
	}
	group, ok := g.byKey[key]
	return group, ok
}

// Members returns all keys belonging to the given group, sorted.
func (g *MergeGroups) Members(group string) []string {
	if g == nil {
		return nil
	}
	var members []string
	for key, owner := range g.byKey {
		if owner == group {
			members = append(members, key)
		}
	}
	sort.Strings(members)
	return members
}
