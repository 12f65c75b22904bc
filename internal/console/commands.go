package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

const helpText = `Commands:
  /clear    start a new conversation and forget the saved one
  /history  show the conversation so far
  /tools    list the lookup tools
  /stats    show usage counters for this session
  /exit     quit (also /quit)
`

func (c *Console) command(ctx context.Context, line string) error {
	name, _, _ := strings.Cut(line, " ")
	switch strings.ToLower(name) {
	case "/exit", "/quit":
		return errExit
	case "/clear":
		c.clear(ctx)
	case "/history":
		c.history()
	case "/tools":
		for _, def := range c.Runner.Tools.Definitions() {
			c.printf("  %s: %s\n", def.Name, def.Description)
		}
	case "/stats":
		c.printf("%s\n", c.Counters.Snapshot())
	case "/help":
		c.printf("%s", helpText)
	default:
		c.printf("unknown command %q, try /help\n", name)
	}
	return nil
}

func (c *Console) clear(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := c.Store.Delete(ctx, c.Session.ID); err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to delete saved conversation: %v\n", err))
	}
	c.Session.Reset()
	c.Counters.Reset()
	c.printf("Conversation cleared.\n")
	c.history()
	c.save(ctx)
}
