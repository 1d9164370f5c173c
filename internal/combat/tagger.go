package combat

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

const DefaultTagDuration = 15 * time.Second

// MessagePublisher sends combat status messages to players.
type MessagePublisher interface {
	PublishToPlayer(id string, msg string) error
}

type TaggerOpt func(*Tagger)

// WithTagDuration sets how long a tag lasts without being refreshed.
func WithTagDuration(d time.Duration) TaggerOpt {
	return func(t *Tagger) {
		t.duration = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TaggerOpt {
	return func(t *Tagger) {
		t.now = now
	}
}

// WithPublisher announces combat state changes to the tagged holders.
func WithPublisher(p MessagePublisher) TaggerOpt {
	return func(t *Tagger) {
		t.pub = p
	}
}

// Tagger tracks which holders are in combat. A tag expires when it has not
// been refreshed for the tag duration.
type Tagger struct {
	mu       sync.Mutex
	duration time.Duration
	now      func() time.Time
	pub      MessagePublisher
	expiry   map[string]time.Time
	onEnd    []func(holderID string)
}

func NewTagger(opts ...TaggerOpt) *Tagger {
	t := &Tagger{
		duration: DefaultTagDuration,
		now:      time.Now,
		expiry:   map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NotifyCombatEnd registers fn to run whenever a holder leaves combat.
func (t *Tagger) NotifyCombatEnd(fn func(holderID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEnd = append(t.onEnd, fn)
}

// InCombat reports whether the holder is tagged.
func (t *Tagger) InCombat(holderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.expiry[holderID]
	return ok
}

// Tag puts the holders in combat, refreshing any existing tag.
func (t *Tagger) Tag(ids ...string) {
	t.mu.Lock()
	until := t.now().Add(t.duration)
	var started []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := t.expiry[id]; !ok {
			started = append(started, id)
		}
		t.expiry[id] = until
	}
	t.mu.Unlock()

	for _, id := range started {
		slog.Debug("combat started", "holder", id)
		t.announce(id, "You are now in combat.")
	}
}

// Untag ends combat for the holder immediately.
func (t *Tagger) Untag(holderID string) {
	t.mu.Lock()
	_, ok := t.expiry[holderID]
	delete(t.expiry, holderID)
	t.mu.Unlock()

	if ok {
		t.ended(holderID)
	}
}

// Tagged returns the holders currently in combat.
func (t *Tagger) Tagged() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.expiry))
	for id := range t.expiry {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tick expires stale tags. Called every tick by the driver.
func (t *Tagger) Tick(ctx context.Context) error {
	t.mu.Lock()
	now := t.now()
	var expired []string
	for id, until := range t.expiry {
		if !now.Before(until) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(t.expiry, id)
	}
	t.mu.Unlock()

	slices.Sort(expired)
	for _, id := range expired {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.ended(id)
	}
	return nil
}

// ended runs outside the lock so callbacks may query the tagger.
func (t *Tagger) ended(holderID string) {
	slog.Debug("combat ended", "holder", holderID)

	t.mu.Lock()
	fns := slices.Clone(t.onEnd)
	t.mu.Unlock()

	for _, fn := range fns {
		fn(holderID)
	}
	t.announce(holderID, "You are no longer in combat.")
}

func (t *Tagger) announce(holderID, msg string) {
	if t.pub == nil {
		return
	}
	if err := t.pub.PublishToPlayer(holderID, msg); err != nil {
		slog.Warn("publishing combat status", "holder", holderID, "error", err)
	}
}
