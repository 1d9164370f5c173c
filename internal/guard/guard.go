package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/display"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-armory/internal/policy"
)

// HeadSlot is the equipment slot marked weapons may never occupy.
const HeadSlot = "head"

var (
	ErrNoHolder    = errors.New("no holder")
	ErrNoContainer = errors.New("no container")
	ErrNotStored   = errors.New("item not in container")
)

// Notifier delivers text to a single player.
type Notifier interface {
	PublishToPlayer(id string, msg string) error
}

// Deferrer runs work on a later tick of the control thread.
type Deferrer interface {
	Schedule(delay time.Duration, fn func())
}

type GuardOpt func(*Guard)

// WithNotifier sets where player notices are sent.
func WithNotifier(n Notifier) GuardOpt {
	return func(g *Guard) {
		g.notify = n
	}
}

// Guard applies the mark rules to the world's item flows: using, dropping,
// storing, equipping and moving items, plus death and disconnect cleanup.
// All methods must be called from the control thread.
type Guard struct {
	engine *armory.Engine
	policy *policy.Store
	later  Deferrer
	notify Notifier
}

func New(engine *armory.Engine, p *policy.Store, later Deferrer, opts ...GuardOpt) *Guard {
	g := &Guard{
		engine: engine,
		policy: p,
		later:  later,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Use is called before holder fires the item. Unmarked managed items are
// marked on first use, and weight is checked and charged while in combat.
func (g *Guard) Use(ctx context.Context, holder *game.Character, instanceId string) error {
	if holder == nil {
		return nil
	}
	oi := holder.Find(instanceId)
	if oi == nil {
		return fmt.Errorf("using %s: %w", instanceId, game.ErrNotCarried)
	}

	title, ok := g.engine.TitleOf(oi)
	if !ok {
		return nil
	}

	if d := g.engine.CheckWeight(holder, title); !d.Allowed {
		return g.deny(ctx, holder.Id, armory.DenyNone, weightMessage(title, d))
	}

	if g.engine.IsManagedWeapon(oi) && !g.engine.IsMarked(oi) {
		res := g.engine.TryMark(holder, oi)
		if !res.Allowed && res.Reason != armory.DenyNotManaged {
			return g.deny(ctx, holder.Id, res.Reason, markDenyMessage(res.Reason))
		}
		if res.Allowed {
			slog.DebugContext(ctx, "marked on use", "holder", holder.Id, "title", title)
		}
	}

	g.engine.AccrueWeight(holder, title)
	return nil
}

func weightMessage(title string, d armory.WeightDecision) string {
	switch {
	case d.Type == policy.WeightTypeIndividual:
		return fmt.Sprintf("You can't use %s (limit: %d/%d).", title, d.Used, d.Max)
	case d.Saturated:
		return fmt.Sprintf("You can't use %s (group limit reached: %d/%d).", title, d.Used, d.Max)
	default:
		return fmt.Sprintf("You can't use %s (would exceed group: %d+%d > %d).", title, d.Used, d.Cost, d.Max)
	}
}

// Drop takes the item from holder so the caller can place it in the world.
// A dropped marked item loses its mark.
func (g *Guard) Drop(ctx context.Context, holder *game.Character, instanceId string) (*game.ObjectInstance, error) {
	if holder == nil {
		return nil, fmt.Errorf("dropping %s: %w", instanceId, ErrNoHolder)
	}
	oi := holder.Find(instanceId)
	if oi == nil {
		return nil, fmt.Errorf("dropping %s: %w", instanceId, game.ErrNotCarried)
	}

	marked := g.engine.IsMarked(oi)
	if marked && g.engine.InCombat(holder.Id) && g.policy.Combat().BlockDropping {
		return nil, g.deny(ctx, holder.Id, armory.DenyNone, "You can't drop an item while in combat!")
	}

	oi, err := holder.Take(instanceId)
	if err != nil {
		return nil, fmt.Errorf("dropping %s: %w", instanceId, err)
	}

	if marked {
		g.engine.UnmarkBy(holder, oi, armory.CausePlayerDrop)
		g.notice(ctx, holder.Id, "You have unmarked this weapon.")
	}
	return oi, nil
}

// Store checks whether holder may place item into a container of the given
// kind, unmarking it when it may. Kinds that are neither regular nor
// non-accepting are left alone.
func (g *Guard) Store(ctx context.Context, holder *game.Character, item *game.ObjectInstance, kind string) error {
	if holder == nil || item == nil || !g.engine.IsMarked(item) {
		return nil
	}

	switch {
	case g.policy.IsNonAcceptingContainer(kind):
		return g.deny(ctx, holder.Id, armory.DenyNone, "You cannot place marked weapons into this interface.")
	case g.policy.IsRegularContainer(kind):
		if g.engine.InCombat(holder.Id) && g.policy.Combat().BlockMovingMarked {
			return g.deny(ctx, holder.Id, armory.DenyNone, "You can't move marked weapons while in combat.")
		}
		g.engine.UnmarkBy(holder, item, armory.CausePutInContainer)
		g.notice(ctx, holder.Id, "Your weapon has been unmarked because it was moved into a container.")
	}
	return nil
}

// Put moves a carried item into a container. Display blocks and bundles
// have their own rules; every other kind goes through Store first.
func (g *Guard) Put(ctx context.Context, holder *game.Character, instanceId string, c *game.Container) error {
	switch {
	case holder == nil:
		return fmt.Errorf("putting %s: %w", instanceId, ErrNoHolder)
	case c == nil:
		return fmt.Errorf("putting %s: %w", instanceId, ErrNoContainer)
	}
	oi := holder.Inventory.Get(instanceId)
	if oi == nil {
		return fmt.Errorf("putting %s: %w", instanceId, game.ErrNotCarried)
	}

	kind := policy.Normalize(c.Kind)
	if dk, ok := displayKinds[kind]; ok {
		g.place(holder, oi, c)
		g.later.Schedule(0, func() {
			g.unmarkDisplayed(ctx, holder, oi, c, dk, "placed in")
		})
		return nil
	}
	if kind == policy.Normalize(KindBundle) {
		return g.putInBundle(ctx, holder, oi, c)
	}

	if err := g.Store(ctx, holder, oi, c.Kind); err != nil {
		return err
	}
	g.place(holder, oi, c)
	return nil
}

func (g *Guard) place(holder *game.Character, oi *game.ObjectInstance, c *game.Container) {
	holder.Inventory.Remove(oi.InstanceId)
	if c.Contents == nil {
		c.Contents = game.NewInventory()
	}
	c.Contents.Add(oi)
}

// Equip moves a carried item into an equipment slot. A marked item headed
// for the head slot is unmarked and stays in the inventory.
func (g *Guard) Equip(ctx context.Context, holder *game.Character, slot string, instanceId string) error {
	if holder == nil {
		return fmt.Errorf("equipping %s: %w", instanceId, ErrNoHolder)
	}
	oi := holder.Inventory.Get(instanceId)
	if oi == nil {
		return fmt.Errorf("equipping %s: %w", instanceId, game.ErrNotCarried)
	}

	if slot == HeadSlot && g.engine.IsMarked(oi) {
		g.engine.UnmarkBy(holder, oi, armory.CauseHatSlotGuard)
		return g.deny(ctx, holder.Id, armory.DenyNone, "Marked weapons cannot be worn as hats.")
	}

	if err := holder.Equipment.Equip(slot, oi); err != nil {
		return fmt.Errorf("equipping %s: %w", instanceId, err)
	}
	holder.Inventory.Remove(instanceId)
	return nil
}

// Death unmarks the holder's items and clears their weight. Without
// keepInventory everything held is dropped and returned.
func (g *Guard) Death(ctx context.Context, holder *game.Character, keepInventory bool) []*game.ObjectInstance {
	if holder == nil {
		return nil
	}
	var drops []*game.ObjectInstance
	if keepInventory {
		for _, it := range holder.Items() {
			g.engine.Unmark(it, armory.CauseDeathKeepInventory)
		}
	} else {
		for _, it := range holder.Items() {
			oi, err := holder.Take(it.InstanceID())
			if err != nil {
				slog.WarnContext(ctx, "dropping on death", "holder", holder.Id, "instance", it.InstanceID(), "error", err)
				continue
			}
			g.engine.Unmark(oi, armory.CauseDeathDrop)
			drops = append(drops, oi)
		}
	}

	g.engine.ClearHolder(holder.Id)
	g.notice(ctx, holder.Id, "All marked weapons have been unmarked due to your death.")
	slog.DebugContext(ctx, "holder died", "holder", holder.Id, "drops", len(drops), "keep_inventory", keepInventory)
	return drops
}

// Disconnect releases per-holder weight state.
func (g *Guard) Disconnect(ctx context.Context, holderID string) {
	g.engine.ClearHolder(holderID)
	slog.DebugContext(ctx, "holder disconnected", "holder", holderID)
}

func (g *Guard) deny(ctx context.Context, holderID string, r armory.DenyReason, msg string) *Denial {
	g.notice(ctx, holderID, msg)
	return &Denial{Reason: r, Message: msg}
}

func (g *Guard) notice(ctx context.Context, holderID string, msg string) {
	if g.notify == nil {
		return
	}
	if err := g.notify.PublishToPlayer(holderID, display.Notice("%s", msg)); err != nil {
		slog.WarnContext(ctx, "publishing notice", "holder", holderID, "error", err)
	}
}
