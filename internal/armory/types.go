package armory

import (
	"time"

	"github.com/pixil98/go-armory/internal/storage"
)

// Item is a single item instance that can carry a mark.
type Item interface {
	InstanceID() string
	Quantity() int
	Extensions() *storage.ExtensionState
}

// Holder is anything that carries items and can own marks.
type Holder interface {
	HolderID() string
	// Items returns every item the holder carries, worn or not.
	Items() []Item
}

// TitleResolver maps an item to its logical title.
type TitleResolver interface {
	TitleOf(Item) (string, bool)
}

// CombatStatus reports whether a holder is currently in combat.
type CombatStatus interface {
	InCombat(holderID string) bool
}

// Deferrer runs work on the control thread after a delay. Scheduling under
// a key replaces any task still pending under that key.
type Deferrer interface {
	ScheduleKeyed(key string, delay time.Duration, fn func())
	CancelKey(key string) bool
}
