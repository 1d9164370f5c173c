package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/driver"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-armory/internal/guard"
	"github.com/pixil98/go-armory/internal/policy"
	"github.com/pixil98/go-errors"
)

const (
	SubjectReload      = "armory.reload"
	SubjectUsage       = "armory.usage"
	SubjectInfo        = "armory.info"
	SubjectCombatTag   = "armory.combat.tag"
	SubjectCombatUntag = "armory.combat.untag"

	DefaultRequestTimeout = 5 * time.Second
)

// Conn is the messaging connection the bridge listens on.
type Conn interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(data []byte)) (func(), error)
	Reply(subject string, handler func(data []byte) []byte) (func(), error)
}

// Reloader reloads a definition store from its backing files.
type Reloader interface {
	Reload() error
	Ids() []string
}

// Tagger puts holders into and out of combat.
type Tagger interface {
	Tag(ids ...string)
	Untag(id string)
	Tagged() []string
}

type BridgeOpt func(*Bridge)

// WithObjects reloads the object definitions along with the policy.
func WithObjects(r Reloader) BridgeOpt {
	return func(b *Bridge) {
		b.objects = r
	}
}

// WithTagger accepts combat tags from other services.
func WithTagger(t Tagger) BridgeOpt {
	return func(b *Bridge) {
		b.tagger = t
	}
}

// WithRequestTimeout bounds how long a request waits for the control thread.
func WithRequestTimeout(d time.Duration) BridgeOpt {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// Bridge exposes reload, inspection and combat tagging over messaging. Every
// request is handed to the control thread.
type Bridge struct {
	conn    Conn
	ctl     driver.Runner
	engine  *armory.Engine
	policy  *policy.Store
	source  policy.Source
	objects Reloader
	tagger  Tagger
	world   *game.World
	guard   *guard.Guard
	timeout time.Duration
}

func NewBridge(conn Conn, ctl driver.Runner, engine *armory.Engine, p *policy.Store, src policy.Source, opts ...BridgeOpt) *Bridge {
	b := &Bridge{
		conn:    conn,
		ctl:     ctl,
		engine:  engine,
		policy:  p,
		source:  src,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.conn.Ready():
	}

	var unsubs []func()
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	replies := map[string]func(context.Context, []byte) any{
		SubjectReload: b.handleReload,
		SubjectUsage:  b.handleUsage,
		SubjectInfo:   b.handleInfo,
	}
	if b.world != nil && b.guard != nil {
		replies[SubjectAction] = b.handleAction
		replies[SubjectHolders] = b.handleHolders
	}
	for subject, h := range replies {
		unsub, err := b.conn.Reply(subject, func(data []byte) []byte {
			return encodeReply(h(ctx, data))
		})
		if err != nil {
			return err
		}
		unsubs = append(unsubs, unsub)
	}

	if b.tagger != nil {
		subs := map[string]func([]byte) error{
			SubjectCombatTag:   b.handleTag,
			SubjectCombatUntag: b.handleUntag,
		}
		for subject, h := range subs {
			unsub, err := b.conn.Subscribe(subject, func(data []byte) {
				if err := h(data); err != nil {
					slog.WarnContext(ctx, "handling combat message", "subject", subject, "error", err)
				}
			})
			if err != nil {
				return err
			}
			unsubs = append(unsubs, unsub)
		}
	}

	slog.InfoContext(ctx, "armory bridge listening", "subjects", len(unsubs))
	<-ctx.Done()
	return nil
}

type errorReply struct {
	Error string `json:"error"`
}

func encodeReply(v any) []byte {
	if err, ok := v.(error); ok {
		v = errorReply{Error: err.Error()}
	}
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorReply{Error: fmt.Sprintf("encoding reply: %v", err)})
	}
	return data
}

type ReloadReply struct {
	Groups       int      `json:"groups"`
	WeightGroups bool     `json:"weight_rules"`
	Objects      int      `json:"objects,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (b *Bridge) handleReload(ctx context.Context, _ []byte) any {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := driver.Call(ctx, b.ctl, func(ctx context.Context) (ReloadReply, error) {
		var reply ReloadReply
		el := errors.NewErrorList()
		if b.objects != nil {
			if err := b.objects.Reload(); err != nil {
				el.Add(fmt.Errorf("reloading objects: %w", err))
			}
			reply.Objects = len(b.objects.Ids())
		}
		if err := b.policy.Reload(ctx, b.source); err != nil {
			el.Add(fmt.Errorf("reloading policy: %w", err))
		}

		reply.Groups = len(b.policy.Groups())
		reply.WeightGroups = b.policy.HasWeightRules()
		for _, w := range b.policy.Warnings() {
			reply.Warnings = append(reply.Warnings, w.Error())
		}
		if err := el.Err(); err != nil {
			reply.Error = err.Error()
		}
		return reply, nil
	})
	if err != nil {
		reply.Error = err.Error()
	}
	if reply.Error != "" {
		slog.WarnContext(ctx, "reload request failed", "error", reply.Error)
	}
	return reply
}

type UsageReply struct {
	Holder string `json:"holder"`
	armory.WeightUsage
}

func (b *Bridge) handleUsage(ctx context.Context, data []byte) any {
	id := strings.TrimSpace(string(data))
	if id == "" {
		return fmt.Errorf("holder id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := driver.Call(ctx, b.ctl, func(context.Context) (UsageReply, error) {
		return UsageReply{Holder: id, WeightUsage: b.engine.WeightUsage(id)}, nil
	})
	if err != nil {
		return err
	}
	return reply
}

type GroupReply struct {
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	PoolLimit int    `json:"pool_limit,omitempty"`
	MemberCap int    `json:"member_cap,omitempty"`
}

type InfoReply struct {
	Title   string       `json:"title"`
	Managed bool         `json:"managed"`
	Limit   int          `json:"limit,omitempty"`
	Groups  []GroupReply `json:"groups,omitempty"`
}

// limited maps policy.Unlimited to zero so it is omitted from replies.
func limited(n int) int {
	if n == policy.Unlimited {
		return 0
	}
	return n
}

func (b *Bridge) handleInfo(ctx context.Context, data []byte) any {
	title := policy.Normalize(string(data))
	if title == "" {
		return fmt.Errorf("title is required")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := driver.Call(ctx, b.ctl, func(context.Context) (InfoReply, error) {
		reply := InfoReply{
			Title:   title,
			Managed: b.policy.IsManaged(title),
			Limit:   limited(b.engine.WeaponLimit(title)),
		}
		for _, g := range b.engine.GroupsFor(title) {
			reply.Groups = append(reply.Groups, GroupReply{
				Name:      g.Name,
				Mode:      g.Mode.String(),
				PoolLimit: limited(g.PoolLimit),
				MemberCap: limited(g.MemberCap),
			})
		}
		return reply, nil
	})
	if err != nil {
		return err
	}
	return reply
}

type tagRequest struct {
	IDs []string `json:"ids"`
}

func (b *Bridge) handleTag(data []byte) error {
	var req tagRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding tag request: %w", err)
	}
	if len(req.IDs) == 0 {
		return nil
	}
	return b.ctl.Submit(func(context.Context) {
		b.tagger.Tag(req.IDs...)
	})
}

// handleUntag ends combat for the listed holders, firing their end-of-combat
// handling right away instead of waiting for the tags to expire.
func (b *Bridge) handleUntag(data []byte) error {
	var req tagRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding untag request: %w", err)
	}
	if len(req.IDs) == 0 {
		return nil
	}
	return b.ctl.Submit(func(context.Context) {
		for _, id := range req.IDs {
			b.tagger.Untag(id)
		}
	})
}
