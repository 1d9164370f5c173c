package combat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type mockPublisher struct {
	msgs map[string][]string
	err  error
}

func (p *mockPublisher) PublishToPlayer(id string, msg string) error {
	if p.msgs == nil {
		p.msgs = map[string][]string{}
	}
	p.msgs[id] = append(p.msgs[id], msg)
	return p.err
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestTagger(opts ...TaggerOpt) (*Tagger, *fakeClock) {
	c := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]TaggerOpt{WithClock(c.now), WithTagDuration(10 * time.Second)}, opts...)
	return NewTagger(opts...), c
}

func TestTagger_TagAndExpire(t *testing.T) {
	tests := map[string]struct {
		refreshAt time.Duration
		checkAt   time.Duration
		expIn     bool
	}{
		"within duration":          {checkAt: 9 * time.Second, expIn: true},
		"at expiry":                {checkAt: 10 * time.Second, expIn: false},
		"refreshed tag lasts":      {refreshAt: 5 * time.Second, checkAt: 12 * time.Second, expIn: true},
		"refreshed tag still ends": {refreshAt: 5 * time.Second, checkAt: 15 * time.Second, expIn: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tg, c := newTestTagger()
			start := c.t

			var ended []string
			tg.NotifyCombatEnd(func(id string) { ended = append(ended, id) })

			tg.Tag("p1")
			if tt.refreshAt > 0 {
				c.t = start.Add(tt.refreshAt)
				tg.Tag("p1")
			}

			c.t = start.Add(tt.checkAt)
			if err := tg.Tick(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "in combat", tg.InCombat("p1"), tt.expIn)
			testutil.AssertEqual(t, "end signals", len(ended), map[bool]int{true: 0, false: 1}[tt.expIn])
		})
	}
}

func TestTagger_Untag(t *testing.T) {
	tg, _ := newTestTagger()

	var ended []string
	tg.NotifyCombatEnd(func(id string) {
		// Callbacks may query the tagger.
		ended = append(ended, fmt.Sprintf("%s:%t", id, tg.InCombat(id)))
	})

	tg.Tag("p1", "p2", "")
	testutil.AssertEqual(t, "tagged", len(tg.Tagged()), 2)

	tg.Untag("p1")
	tg.Untag("p1")
	tg.Untag("never")

	testutil.AssertEqual(t, "p1", tg.InCombat("p1"), false)
	testutil.AssertEqual(t, "p2", tg.InCombat("p2"), true)
	testutil.AssertEqual(t, "signals", len(ended), 1)
	testutil.AssertEqual(t, "signal", ended[0], "p1:false")
}

func TestTagger_Announces(t *testing.T) {
	pub := &mockPublisher{err: fmt.Errorf("nats down")}
	tg, _ := newTestTagger(WithPublisher(pub))

	tg.Tag("p1")
	tg.Tag("p1")
	tg.Untag("p1")

	testutil.AssertEqual(t, "message count", len(pub.msgs["p1"]), 2)
	testutil.AssertEqual(t, "start", pub.msgs["p1"][0], "You are now in combat.")
	testutil.AssertEqual(t, "end", pub.msgs["p1"][1], "You are no longer in combat.")
}
