package windowing

import "github.com/petasbytes/searchchat/conversation"

// Stats describes one PrepareSendWindow call. Total only counts the groups
// that made it into the window.
type Stats struct {
	Total          int
	Budget         int
	IncludedGroups int
	SkippedGroups  int
	// OverBudgetNewest is set when the newest user turn and the groups after
	// it cost more than Budget on their own.
	OverBudgetNewest bool
}

// PrepareSendWindow returns the newest whole groups of turns, oldest first.
// The group holding the newest user turn and every group after it are always
// part of the window; older groups are added newest first while they fit in
// budget. When that required tail alone does not fit the window is empty and
// OverBudgetNewest is set.
func PrepareSendWindow(turns []conversation.Turn, budget int, c TokenCounter) ([]conversation.Turn, Stats) {
	st := Stats{Budget: budget}
	groups := GroupTurns(turns)
	if len(groups) == 0 {
		return nil, st
	}

	anchor := newestUserGroup(groups, turns)
	for i := anchor; i < len(groups); i++ {
		st.Total += c.CountGroup(groups[i], turns)
	}
	if st.Total > budget {
		vlogf("reason=over_budget_newest_cycle budget=%d cost=%d groups=%d", budget, st.Total, len(groups)-anchor)
		st.OverBudgetNewest = true
		st.Total = 0
		st.SkippedGroups = len(groups)
		return nil, st
	}
	st.IncludedGroups = len(groups) - anchor

	from := groups[anchor].Start
	for i := anchor - 1; i >= 0; i-- {
		cost := c.CountGroup(groups[i], turns)
		if st.Total+cost > budget {
			break
		}
		st.Total += cost
		st.IncludedGroups++
		from = groups[i].Start
	}
	st.SkippedGroups = len(groups) - st.IncludedGroups
	return turns[from:], st
}

// newestUserGroup is the index of the last group opened by a user turn, or
// the last group when there is none.
func newestUserGroup(groups []Group, turns []conversation.Turn) int {
	for i := len(groups) - 1; i >= 0; i-- {
		if turns[groups[i].Start].Role == conversation.RoleUser {
			return i
		}
	}
	return len(groups) - 1
}
