package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-armory/internal/policy"
)

// Container kinds with rules of their own.
const (
	KindItemFrame    = "item_frame"
	KindDecoratedPot = "decorated_pot"
	KindBundle       = "bundle"
)

// HandSlots are checked for marked weapons before an auction command runs.
var HandSlots = []string{"mainhand", "offhand"}

// displayKind is a block that shows its item to the world. Items placed in
// or taken out of one lose their mark on the next tick.
type displayKind struct {
	cause armory.UnmarkCause
	name  string
}

var displayKinds = map[string]displayKind{
	policy.Normalize(KindItemFrame):    {cause: armory.CauseItemFrame, name: "item frame"},
	policy.Normalize(KindDecoratedPot): {cause: armory.CauseDecoratedContainer, name: "decorated pot"},
}

// TakeOut moves an item from a container into holder's inventory. Items
// taken from a display block are unmarked on the next tick.
func (g *Guard) TakeOut(ctx context.Context, holder *game.Character, instanceId string, c *game.Container) error {
	switch {
	case holder == nil:
		return fmt.Errorf("taking %s: %w", instanceId, ErrNoHolder)
	case c == nil:
		return fmt.Errorf("taking %s: %w", instanceId, ErrNoContainer)
	case c.Contents == nil || !c.Contents.Contains(instanceId):
		return fmt.Errorf("taking %s from %s: %w", instanceId, c.Id, ErrNotStored)
	}

	oi := c.Contents.Remove(instanceId)
	holder.Inventory.Add(oi)

	if dk, ok := displayKinds[policy.Normalize(c.Kind)]; ok {
		g.later.Schedule(0, func() {
			g.unmarkTaken(ctx, holder, oi, dk)
		})
	}
	return nil
}

// unmarkDisplayed runs a tick after oi was placed in c. Nothing happens if
// the item has already left the container or lost its mark.
func (g *Guard) unmarkDisplayed(ctx context.Context, holder *game.Character, oi *game.ObjectInstance, c *game.Container, dk displayKind, verb string) {
	if c.Contents == nil || !c.Contents.Contains(oi.InstanceId) || !g.engine.IsMarked(oi) {
		return
	}
	g.engine.UnmarkBy(holder, oi, dk.cause)
	slog.DebugContext(ctx, "unmarked displayed item", "holder", holder.Id, "container", c.Id, "cause", dk.cause)
	g.notice(ctx, holder.Id, fmt.Sprintf("The weapon you %s the %s has been unmarked.", verb, dk.name))
}

func (g *Guard) unmarkTaken(ctx context.Context, holder *game.Character, oi *game.ObjectInstance, dk displayKind) {
	if !g.engine.IsMarked(oi) {
		return
	}
	g.engine.UnmarkBy(holder, oi, dk.cause)
	slog.DebugContext(ctx, "unmarked item taken from display", "holder", holder.Id, "instance", oi.InstanceId, "cause", dk.cause)
	g.notice(ctx, holder.Id, fmt.Sprintf("The weapon you took from the %s has been unmarked.", dk.name))
}

// putInBundle refuses marked items outright. Anything marked that still ends
// up inside the bundle is swept on the next tick.
func (g *Guard) putInBundle(ctx context.Context, holder *game.Character, oi *game.ObjectInstance, c *game.Container) error {
	if g.engine.IsMarked(oi) {
		return g.deny(ctx, holder.Id, armory.DenyNone, "You cannot place marked weapons into bundles.")
	}
	g.place(holder, oi, c)
	g.later.Schedule(0, func() {
		g.sweepBundle(ctx, holder, c)
	})
	return nil
}

func (g *Guard) sweepBundle(ctx context.Context, holder *game.Character, c *game.Container) {
	swept := 0
	for _, it := range c.Contents.List() {
		if !g.engine.IsMarked(it) {
			continue
		}
		g.engine.UnmarkBy(holder, it, armory.CauseSpecialContainer)
		swept++
	}
	if swept == 0 {
		return
	}
	slog.DebugContext(ctx, "swept bundle", "holder", holder.Id, "container", c.Id, "unmarked", swept)
	g.notice(ctx, holder.Id, "A marked weapon inside your bundle has been unmarked.")
}

// Command is called before holder runs a chat command. Auction commands are
// refused while a marked weapon is in hand.
func (g *Guard) Command(ctx context.Context, holder *game.Character, line string) error {
	if holder == nil || holder.Equipment == nil || !g.policy.IsAuctionCommand(line) {
		return nil
	}
	for _, slot := range HandSlots {
		oi := holder.Equipment.GetSlot(slot)
		if oi != nil && g.engine.IsMarked(oi) {
			return g.deny(ctx, holder.Id, armory.DenyNone, "You cannot list or auction marked weapons.")
		}
	}
	return nil
}
