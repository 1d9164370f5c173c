package armory

// Tracker remembers titles a holder unmarked while in combat so they cannot
// be marked again until that combat ends. Without a combat provider it is
// inert.
type Tracker struct {
	enabled bool
	blocked map[string]map[string]struct{}
}

// NewTracker returns a tracker. A disabled tracker never blocks anything.
func NewTracker(enabled bool) *Tracker {
	return &Tracker{
		enabled: enabled,
		blocked: map[string]map[string]struct{}{},
	}
}

// Flag blocks title for the holder.
func (t *Tracker) Flag(holderID, title string) {
	if !t.enabled {
		return
	}
	set, ok := t.blocked[holderID]
	if !ok {
		set = map[string]struct{}{}
		t.blocked[holderID] = set
	}
	set[title] = struct{}{}
}

// IsBlocked reports whether title is blocked for the holder.
func (t *Tracker) IsBlocked(holderID, title string) bool {
	if !t.enabled {
		return false
	}
	_, ok := t.blocked[holderID][title]
	return ok
}

// Clear unblocks every title for the holder.
func (t *Tracker) Clear(holderID string) {
	delete(t.blocked, holderID)
}
