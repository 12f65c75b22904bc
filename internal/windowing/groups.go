// Package windowing trims a conversation to an input-token budget without
// ever separating a tool request from its result.
package windowing

import (
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/petasbytes/searchchat/conversation"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of turns [Start, End).
type Group struct {
	Kind  GroupKind
	Start int // inclusive
	End   int // exclusive
}

// GroupTurns splits turns into atomic units. A pair is an assistant Turn
// carrying a request directly followed by the tool Turn answering it. An
// unanswered request (left behind by an aborted cycle) is a singleton.
func GroupTurns(turns []conversation.Turn) []Group {
	groups := make([]Group, 0, len(turns))
	for i := 0; i < len(turns); {
		t := turns[i]
		if t.Role == conversation.RoleAssistant && t.RequestsTool() {
			if i+1 < len(turns) && answers(turns[i+1], t) {
				groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
				i += 2
				continue
			}
			vlogf("unpaired request: id=%s idx=%d", t.Request.ID, i)
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

func answers(result, request conversation.Turn) bool {
	return result.Role == conversation.RoleTool && result.ResultFor == request.Request.ID
}

// Verbose returns true when AGT_VERBOSE_WINDOW_LOGS is truthy.
func Verbose() bool {
	return misc.Truthy(os.Getenv("AGT_VERBOSE_WINDOW_LOGS"))
}

func vlogf(format string, args ...any) {
	if Verbose() {
		ancli.Noticef("[windowing] "+format+"\n", args...)
	}
}
