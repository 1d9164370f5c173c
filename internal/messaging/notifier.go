package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-armory/internal/armory"
)

const (
	SubjectMarked   = "armory.marked"
	SubjectUnmarked = "armory.unmarked"
)

// Publisher sends raw messages to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// MarkNotice is the payload published for every mark change.
type MarkNotice struct {
	Holder   string `json:"holder,omitempty"`
	Title    string `json:"title"`
	Cause    string `json:"cause,omitempty"`
	Instance string `json:"instance"`
}

// Notifier publishes mark changes and player messages. Register it with
// armory.Engine.AddObserver.
type Notifier struct {
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

func (n *Notifier) Marked(e armory.MarkEvent) {
	var holder string
	if e.Holder != nil {
		holder = e.Holder.HolderID()
	}
	n.publish(SubjectMarked, MarkNotice{
		Holder:   holder,
		Title:    e.Title,
		Instance: e.Item.InstanceID(),
	})
}

func (n *Notifier) Unmarked(e armory.UnmarkEvent) {
	var holder string
	if e.Actor != nil {
		holder = e.Actor.HolderID()
	}
	n.publish(SubjectUnmarked, MarkNotice{
		Holder:   holder,
		Title:    e.Title,
		Cause:    e.Cause.String(),
		Instance: e.Item.InstanceID(),
	})
}

func (n *Notifier) publish(base string, notice MarkNotice) {
	data, err := json.Marshal(notice)
	if err != nil {
		slog.Error("marshalling mark notice", "error", err)
		return
	}

	subject := base
	if notice.Holder != "" {
		subject = base + "." + notice.Holder
	}
	if err := n.pub.Publish(subject, data); err != nil {
		slog.Warn("publishing mark notice", "subject", subject, "error", err)
	}
}

// PublishToPlayer sends text to a single player's channel.
func (n *Notifier) PublishToPlayer(id string, msg string) error {
	return n.pub.Publish(PlayerSubject(id), []byte(msg))
}

func PlayerSubject(id string) string {
	return fmt.Sprintf("player-%s", id)
}
