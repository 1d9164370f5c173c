package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-errors"
)

// Transfer moves items from one holder's inventory to another's on actor's
// behalf, such as an admin editing a player's inventory. Marked items that
// land in the destination are unmarked on the next tick and the actor is
// told. Items already marked in the destination keep their mark.
func (g *Guard) Transfer(ctx context.Context, actor, from, to *game.Character, instanceIds ...string) error {
	before := map[string]struct{}{}
	for _, it := range g.engine.MarkedItems(to) {
		before[it.InstanceID()] = struct{}{}
	}

	el := errors.NewErrorList()
	moved := 0
	for _, id := range instanceIds {
		oi, err := from.Take(id)
		if err != nil {
			el.Add(fmt.Errorf("transferring %s: %w", id, err))
			continue
		}
		to.Inventory.Add(oi)
		moved++
	}

	if moved > 0 {
		g.later.Schedule(0, func() {
			g.reconcile(ctx, actor, to, before)
		})
	}
	return el.Err()
}

func (g *Guard) reconcile(ctx context.Context, actor, to *game.Character, before map[string]struct{}) {
	for _, it := range g.engine.MarkedItems(to) {
		if _, ok := before[it.InstanceID()]; ok {
			continue
		}

		title, ok := g.engine.TitleOf(it)
		if !ok {
			title = "weapon"
		}

		var by armory.Holder
		if actor != nil {
			by = actor
		}
		g.engine.UnmarkBy(by, it, armory.CauseIndirectTransfer)
		slog.DebugContext(ctx, "unmarked transferred item", "holder", to.Id, "title", title, "instance", it.InstanceID())

		if actor != nil {
			g.notice(ctx, actor.Id, fmt.Sprintf("The %s was unmarked.", title))
		}
	}
}
