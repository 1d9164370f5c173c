package messaging

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-testutil"
)

type published struct {
	subject string
	data    string
}

type mockPublisher struct {
	msgs []published
	err  error
}

func (p *mockPublisher) Publish(subject string, data []byte) error {
	p.msgs = append(p.msgs, published{subject: subject, data: string(data)})
	return p.err
}

func TestNotifier_Events(t *testing.T) {
	holder := game.NewCharacter("p1", "Bob")
	item := &game.ObjectInstance{InstanceId: "i1", ObjectId: "ak", Count: 1}

	tests := map[string]struct {
		fire func(n *Notifier)
		exp  published
	}{
		"marked": {
			fire: func(n *Notifier) {
				n.Marked(armory.MarkEvent{Holder: holder, Item: item, Title: "AK47"})
			},
			exp: published{
				subject: "armory.marked.p1",
				data:    `{"holder":"p1","title":"AK47","instance":"i1"}`,
			},
		},
		"unmarked by actor": {
			fire: func(n *Notifier) {
				n.Unmarked(armory.UnmarkEvent{Actor: holder, Item: item, Title: "AK47", Cause: armory.CausePlayerDrop})
			},
			exp: published{
				subject: "armory.unmarked.p1",
				data:    `{"holder":"p1","title":"AK47","cause":"PLAYER_DROP","instance":"i1"}`,
			},
		},
		"unmarked without actor": {
			fire: func(n *Notifier) {
				n.Unmarked(armory.UnmarkEvent{Item: item, Title: "AK47", Cause: armory.CauseDeathDrop})
			},
			exp: published{
				subject: "armory.unmarked",
				data:    `{"title":"AK47","cause":"DEATH_DROP","instance":"i1"}`,
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pub := &mockPublisher{}
			tt.fire(NewNotifier(pub))

			testutil.AssertEqual(t, "published", len(pub.msgs), 1)
			testutil.AssertEqual(t, "message", pub.msgs[0], tt.exp, cmp.AllowUnexported(published{}))
		})
	}
}

func TestNotifier_PublishToPlayer(t *testing.T) {
	pub := &mockPublisher{}
	n := NewNotifier(pub)

	if err := n.PublishToPlayer("p1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "message", pub.msgs[0], published{subject: "player-p1", data: "hello"}, cmp.AllowUnexported(published{}))

	pub.err = errors.New("closed")
	testutil.AssertErrorContains(t, n.PublishToPlayer("p1", "again"), "closed")
}

func TestNotifier_PublishFailureIsLogged(t *testing.T) {
	pub := &mockPublisher{err: errors.New("closed")}
	n := NewNotifier(pub)

	n.Marked(armory.MarkEvent{Item: &game.ObjectInstance{InstanceId: "i1"}, Title: "AK47"})
	testutil.AssertEqual(t, "attempted", len(pub.msgs), 1)
	testutil.AssertEqual(t, "subject", pub.msgs[0].subject, SubjectMarked)
}
