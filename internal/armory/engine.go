package armory

import (
	"github.com/pixil98/go-armory/internal/policy"
)

// CombatNotifier pushes an end-of-combat signal for each holder leaving combat.
type CombatNotifier interface {
	NotifyCombatEnd(fn func(holderID string))
}

type EngineOpt func(*Engine)

// WithCombat enables combat gated rules. If status also implements
// CombatNotifier the engine subscribes to its end-of-combat signal.
func WithCombat(status CombatStatus) EngineOpt {
	return func(e *Engine) {
		e.combat = status
	}
}

// WithDeferrer sets the scheduler used for delayed weight decay.
func WithDeferrer(d Deferrer) EngineOpt {
	return func(e *Engine) {
		e.deferrer = d
	}
}

// WithMarkStore replaces the default extension backed mark storage.
func WithMarkStore(m MarkStore) EngineOpt {
	return func(e *Engine) {
		e.marks = m
	}
}

// Engine decides mark transitions and weight usage for holders. It must only
// be called from the control thread.
type Engine struct {
	policy   *policy.Store
	titles   TitleResolver
	marks    MarkStore
	combat   CombatStatus
	deferrer Deferrer

	ledger  *Ledger
	tracker *Tracker

	observers    []registration
	nextObserver ObserverID
}

func NewEngine(p *policy.Store, titles TitleResolver, opts ...EngineOpt) *Engine {
	e := &Engine{
		policy: p,
		titles: titles,
		marks:  ExtensionMarks{},
		ledger: NewLedger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.tracker = NewTracker(e.combat != nil)

	if n, ok := e.combat.(CombatNotifier); ok {
		n.NotifyCombatEnd(e.OnCombatEnd)
	}

	return e
}

// InCombat reports whether the holder is in combat. Without a combat
// provider nobody ever is.
func (e *Engine) InCombat(holderID string) bool {
	return e.combat != nil && e.combat.InCombat(holderID)
}

// TitleOf resolves the normalized title of an item.
func (e *Engine) TitleOf(item Item) (string, bool) {
	if item == nil || e.titles == nil {
		return "", false
	}
	title, ok := e.titles.TitleOf(item)
	if !ok {
		return "", false
	}
	title = policy.Normalize(title)
	return title, title != ""
}

// IsManagedWeapon reports whether mark rules apply to the item.
func (e *Engine) IsManagedWeapon(item Item) bool {
	title, ok := e.TitleOf(item)
	return ok && e.policy.IsManaged(title)
}

// IsMarked reports whether the item carries a mark.
func (e *Engine) IsMarked(item Item) bool {
	return item != nil && e.marks.IsMarked(item)
}

// HasDropTag reports whether the item carries the drop tag set alongside a mark.
func (e *Engine) HasDropTag(item Item) bool {
	return item != nil && e.marks.HasDropTag(item)
}

// CountMarked returns how many marked items of title the holder carries.
func (e *Engine) CountMarked(holder Holder, title string) int {
	if holder == nil {
		return 0
	}
	return e.markedCounts(holder)[policy.Normalize(title)]
}

// MarkedItems returns the marked items the holder carries.
func (e *Engine) MarkedItems(holder Holder) []Item {
	if holder == nil {
		return nil
	}
	var out []Item
	for _, it := range holder.Items() {
		if e.IsMarked(it) {
			out = append(out, it)
		}
	}
	return out
}

func (e *Engine) markedCounts(holder Holder) map[string]int {
	counts := map[string]int{}
	for _, it := range holder.Items() {
		if !e.IsMarked(it) {
			continue
		}
		if title, ok := e.TitleOf(it); ok {
			counts[title]++
		}
	}
	return counts
}

// WeaponLimit returns the per-title mark limit, or policy.Unlimited.
func (e *Engine) WeaponLimit(title string) int {
	return e.policy.LimitFor(title)
}

// GroupsFor describes every group the title belongs to.
func (e *Engine) GroupsFor(title string) []GroupInfo {
	groups := e.policy.GroupsFor(title)
	out := make([]GroupInfo, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupInfo{
			Name:      g.Name,
			Mode:      g.Mode,
			PoolLimit: g.EffectiveLimit(),
			MemberCap: g.EffectiveMemberCap(title),
		})
	}
	return out
}

// HasWeightRules reports whether any weight group is configured.
func (e *Engine) HasWeightRules() bool {
	return e.policy.HasWeightRules()
}

// WeightUsage totals the weight the holder has consumed.
func (e *Engine) WeightUsage(holderID string) WeightUsage {
	return e.ledger.Totals(holderID)
}

// Ledger exposes the weight ledger.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Tracker exposes the combat re-mark tracker.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}
