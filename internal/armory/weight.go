package armory

import (
	"log/slog"

	"github.com/pixil98/go-armory/internal/policy"
)

func (e *Engine) weightApplies(holderID string) bool {
	return e.InCombat(holderID) && e.policy.HasWeightRules()
}

// CheckWeight decides whether holder may use title given the weight it has
// already consumed. Weight only applies in combat.
func (e *Engine) CheckWeight(holder Holder, title string) WeightDecision {
	ok := WeightDecision{Allowed: true}
	if holder == nil {
		return ok
	}

	id := holder.HolderID()
	if !e.weightApplies(id) {
		return ok
	}

	title = policy.Normalize(title)
	for _, g := range e.policy.WeightGroupsFor(title) {
		cost, has := g.Cost(title)
		if !has {
			continue
		}

		switch g.Type {
		case policy.WeightTypeIndividual:
			used := e.ledger.UsedForTitle(id, title)
			if !e.ledger.CheckIndividual(id, title, cost, g.Max) {
				slog.Debug("weight denied", "holder", id, "title", title, "group", g.Name, "used", used, "cost", cost, "max", g.Max)
				return WeightDecision{Group: g.Name, Type: g.Type, Used: used, Cost: cost, Max: g.Max}
			}
		case policy.WeightTypeSharedPool:
			used := e.ledger.UsedForGroup(id, g.Name)
			if !e.ledger.CheckSharedPool(id, g.Name, title, cost, g.Max) {
				slog.Debug("weight denied", "holder", id, "title", title, "group", g.Name, "used", used, "cost", cost, "max", g.Max)
				return WeightDecision{Group: g.Name, Type: g.Type, Used: used, Cost: cost, Max: g.Max, Saturated: used >= g.Max}
			}
		}
	}

	return ok
}

// AccrueWeight charges a confirmed use of title to every weight group that
// lists it.
func (e *Engine) AccrueWeight(holder Holder, title string) {
	if holder == nil {
		return
	}

	id := holder.HolderID()
	if !e.weightApplies(id) {
		return
	}

	title = policy.Normalize(title)
	for _, g := range e.policy.WeightGroupsFor(title) {
		cost, has := g.Cost(title)
		if !has {
			continue
		}

		switch g.Type {
		case policy.WeightTypeIndividual:
			e.ledger.AccrueIndividual(id, title, cost)
			slog.Debug("weight accrued", "holder", id, "title", title, "group", g.Name, "used", e.ledger.UsedForTitle(id, title))
		case policy.WeightTypeSharedPool:
			if e.ledger.AccrueSharedPool(id, g.Name, title, cost) {
				slog.Debug("weight accrued", "holder", id, "title", title, "group", g.Name, "used", e.ledger.UsedForGroup(id, g.Name))
			}
		}
	}
}

func decayKey(holderID string) string {
	return "weight-decay:" + holderID
}

// OnCombatEnd unblocks the holder's re-marks and starts weight decay.
func (e *Engine) OnCombatEnd(holderID string) {
	e.tracker.Clear(holderID)

	opts := e.policy.Weight()
	switch {
	case opts.ClearOnCombatEnd:
		e.ledger.Clear(holderID)
		if e.deferrer != nil {
			e.deferrer.CancelKey(decayKey(holderID))
		}
	case opts.ResetTimeout > 0 && e.deferrer != nil:
		e.deferrer.ScheduleKeyed(decayKey(holderID), opts.ResetTimeout, func() {
			if e.InCombat(holderID) {
				slog.Debug("weight decay skipped, back in combat", "holder", holderID)
				return
			}
			e.ledger.Clear(holderID)
			slog.Debug("weight decayed", "holder", holderID)
		})
	default:
		slog.Debug("weight persists after combat", "holder", holderID)
	}
}

// ClearHolder drops all weight for a holder that died or disconnected.
func (e *Engine) ClearHolder(holderID string) {
	e.ledger.Clear(holderID)
	if e.deferrer != nil {
		e.deferrer.CancelKey(decayKey(holderID))
	}
}
