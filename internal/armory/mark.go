package armory

import (
	"log/slog"

	"github.com/pixil98/go-armory/internal/policy"
)

// TryMark attempts to mark item for holder. Marking an already marked item
// succeeds without side effects when the rules still pass.
func (e *Engine) TryMark(holder Holder, item Item) MarkResult {
	if holder == nil || item == nil {
		return deny(DenyNotManaged)
	}

	title, ok := e.TitleOf(item)
	if !ok || !e.policy.IsManaged(title) {
		return deny(DenyNotManaged)
	}

	if item.Quantity() > 1 {
		return e.denied(holder, title, DenyStackedItem)
	}

	id := holder.HolderID()
	if e.InCombat(id) {
		opts := e.policy.Combat()
		if opts.BlockMarking {
			return e.denied(holder, title, DenyMarkBlockedInCombat)
		}
		if opts.BlockRemarking && e.tracker.IsBlocked(id, title) {
			return e.denied(holder, title, DenyRemarkBlockedInCombat)
		}
	}

	pre := &PreMarkEvent{Holder: holder, Item: item, Title: title}
	if e.firePreMark(pre) {
		return e.denied(holder, title, pre.reason)
	}

	already := e.marks.IsMarked(item)
	step := 1
	if already {
		step = 0
	}

	counts := e.markedCounts(holder)
	for _, g := range e.policy.GroupsFor(title) {
		if r := checkGroup(g, title, counts, step); r != DenyNone {
			return e.denied(holder, title, r)
		}
	}

	if !already && counts[title] >= e.policy.LimitFor(title) {
		return e.denied(holder, title, DenyPerWeaponLimit)
	}

	if already {
		return allow()
	}

	if err := e.marks.Mark(item); err != nil {
		slog.Error("marking item", "holder", id, "title", title, "instance", item.InstanceID(), "error", err)
		return deny(DenyUnknownError)
	}

	slog.Debug("item marked", "holder", id, "title", title, "instance", item.InstanceID())
	e.fireMarked(MarkEvent{Holder: holder, Item: item, Title: title})
	return allow()
}

func checkGroup(g *policy.GroupDef, title string, counts map[string]int, step int) DenyReason {
	switch g.Mode {
	case policy.GroupModeExclusive:
		for _, m := range g.Members {
			if m != title && counts[m] > 0 {
				return DenyExclusiveConflict
			}
		}
	case policy.GroupModePool:
		total := 0
		for _, m := range g.Members {
			total += counts[m]
		}
		if total+step > g.EffectiveLimit() {
			return DenyPoolTotalLimit
		}
		if counts[title]+step > g.EffectiveMemberCap(title) {
			return DenyPoolMemberCap
		}
	}
	return DenyNone
}

func (e *Engine) denied(holder Holder, title string, r DenyReason) MarkResult {
	slog.Debug("mark denied", "holder", holder.HolderID(), "title", title, "reason", r)
	return deny(r)
}

// Unmark clears the item's mark with no attributable holder.
func (e *Engine) Unmark(item Item, cause UnmarkCause) UnmarkResult {
	return e.UnmarkBy(nil, item, cause)
}

// UnmarkBy clears the item's mark. When actor is in combat and re-marking is
// blocked, the title stays blocked for actor until that combat ends.
func (e *Engine) UnmarkBy(actor Holder, item Item, cause UnmarkCause) UnmarkResult {
	if item == nil || !e.marks.IsMarked(item) {
		return UnmarkResult{}
	}

	title, resolved := e.TitleOf(item)

	if err := e.marks.Clear(item); err != nil {
		slog.Error("clearing mark", "title", title, "instance", item.InstanceID(), "error", err)
	}

	if actor != nil && resolved && e.InCombat(actor.HolderID()) && e.policy.Combat().BlockRemarking {
		e.tracker.Flag(actor.HolderID(), title)
	}

	slog.Debug("item unmarked", "title", title, "instance", item.InstanceID(), "cause", cause)
	e.fireUnmarked(UnmarkEvent{Actor: actor, Item: item, Title: title, Cause: cause})
	return UnmarkResult{Changed: true}
}
