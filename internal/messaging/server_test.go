package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-testutil"
)

func startTestServer(t *testing.T) *NatsServer {
	t.Helper()

	s, err := NewNatsServer(WithPort(RandomPort), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("stopping server: %v", err)
		}
	})

	select {
	case <-s.Ready():
	case err := <-done:
		done <- err
		t.Fatalf("server exited: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatalf("server not ready")
	}
	return s
}

func TestNatsServer_NotStarted(t *testing.T) {
	s, err := NewNatsServer(WithPort(RandomPort))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertErrorContains(t, s.Publish("x", nil), "not started")
	_, err = s.Subscribe("x", func([]byte) {})
	testutil.AssertErrorContains(t, err, "not started")
	_, err = s.Reply("x", func([]byte) []byte { return nil })
	testutil.AssertErrorContains(t, err, "not started")
}

func TestNatsServer_Reply(t *testing.T) {
	s := startTestServer(t)

	unsub, err := s.Reply("echo", func(data []byte) []byte {
		return append([]byte("re:"), data...)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer nc.Close()

	msg, err := nc.Request("echo", []byte("hi"), 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "reply", string(msg.Data), "re:hi")
}

func TestNatsServer_PlayerChannel(t *testing.T) {
	s := startTestServer(t)

	got := make(chan string, 1)
	unsub, err := s.Subscribe(PlayerSubject("p1"), func(data []byte) {
		got <- string(data)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	if err := NewNotifier(s).PublishToPlayer("p1", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-got:
		testutil.AssertEqual(t, "message", msg, "hello")
	case <-time.After(5 * time.Second):
		t.Fatalf("message not delivered")
	}
}
