package armory

type holderWeight struct {
	perTitle map[string]int
	perGroup map[string]int
	charged  map[string]map[string]struct{}
}

func newHolderWeight() *holderWeight {
	return &holderWeight{
		perTitle: map[string]int{},
		perGroup: map[string]int{},
		charged:  map[string]map[string]struct{}{},
	}
}

// Ledger tracks the weight each holder has consumed. Weight only grows
// until the holder is cleared. Titles are expected in normalized form.
type Ledger struct {
	holders map[string]*holderWeight
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{holders: map[string]*holderWeight{}}
}

func (l *Ledger) state(holderID string) *holderWeight {
	hw, ok := l.holders[holderID]
	if !ok {
		hw = newHolderWeight()
		l.holders[holderID] = hw
	}
	return hw
}

// CheckIndividual reports whether one more use of title fits its budget.
func (l *Ledger) CheckIndividual(holderID, title string, cost, budget int) bool {
	return l.UsedForTitle(holderID, title)+cost <= budget
}

// CheckSharedPool reports whether title may be used against the group's
// pool. A full pool refuses every title. Otherwise only a title not yet
// charged may push the pool over its budget.
func (l *Ledger) CheckSharedPool(holderID, group, title string, cost, budget int) bool {
	used := l.UsedForGroup(holderID, group)
	if used >= budget {
		return false
	}
	if l.HasCharged(holderID, group, title) {
		return true
	}
	return used+cost <= budget
}

// AccrueIndividual adds cost to the title's usage.
func (l *Ledger) AccrueIndividual(holderID, title string, cost int) {
	l.state(holderID).perTitle[title] += cost
}

// AccrueSharedPool charges the group on the title's first use and reports
// whether a charge was made.
func (l *Ledger) AccrueSharedPool(holderID, group, title string, cost int) bool {
	hw := l.state(holderID)

	seen, ok := hw.charged[group]
	if !ok {
		seen = map[string]struct{}{}
		hw.charged[group] = seen
	}
	if _, dup := seen[title]; dup {
		return false
	}

	seen[title] = struct{}{}
	hw.perGroup[group] += cost
	return true
}

// UsedForTitle returns the individual weight consumed by title.
func (l *Ledger) UsedForTitle(holderID, title string) int {
	hw, ok := l.holders[holderID]
	if !ok {
		return 0
	}
	return hw.perTitle[title]
}

// UsedForGroup returns the shared pool weight consumed in group.
func (l *Ledger) UsedForGroup(holderID, group string) int {
	hw, ok := l.holders[holderID]
	if !ok {
		return 0
	}
	return hw.perGroup[group]
}

// HasCharged reports whether title has already been charged to group.
func (l *Ledger) HasCharged(holderID, group, title string) bool {
	hw, ok := l.holders[holderID]
	if !ok {
		return false
	}
	_, seen := hw.charged[group][title]
	return seen
}

// Totals sums every title and every group for the holder.
func (l *Ledger) Totals(holderID string) WeightUsage {
	var u WeightUsage
	hw, ok := l.holders[holderID]
	if !ok {
		return u
	}
	for _, v := range hw.perTitle {
		u.IndividualUsed += v
	}
	for _, v := range hw.perGroup {
		u.GroupUsed += v
	}
	return u
}

// Clear forgets everything recorded for the holder.
func (l *Ledger) Clear(holderID string) {
	delete(l.holders, holderID)
}
