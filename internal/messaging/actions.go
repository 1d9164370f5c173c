package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/driver"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-armory/internal/guard"
)

const (
	SubjectAction  = "armory.action"
	SubjectHolders = "armory.holders"
)

// WithWorld lets other services drive item flows through the guard.
func WithWorld(w *game.World, g *guard.Guard) BridgeOpt {
	return func(b *Bridge) {
		b.world = w
		b.guard = g
	}
}

// ActionRequest describes one item flow performed by Holder.
type ActionRequest struct {
	Action        string `json:"action"`
	Holder        string `json:"holder"`
	Instance      string `json:"instance,omitempty"`
	Object        string `json:"object,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	Slot          string `json:"slot,omitempty"`
	Container     string `json:"container,omitempty"`
	Kind          string `json:"kind,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Line          string `json:"line,omitempty"`
	KeepInventory bool   `json:"keep_inventory,omitempty"`
}

type ActionReply struct {
	OK        bool     `json:"ok"`
	Denied    string   `json:"denied,omitempty"`
	Instances []string `json:"instances,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (b *Bridge) handleAction(ctx context.Context, data []byte) any {
	var req ActionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding action request: %w", err)
	}
	if req.Holder == "" {
		return fmt.Errorf("holder is required")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := driver.Call(ctx, b.ctl, func(ctx context.Context) (ActionReply, error) {
		ids, err := b.perform(ctx, req)
		return ActionReply{Instances: ids}, err
	})

	var denial *guard.Denial
	switch {
	case errors.As(err, &denial):
		reply.Denied = denial.Message
	case err != nil:
		reply.Error = err.Error()
	default:
		reply.OK = true
	}
	return reply
}

func (b *Bridge) perform(ctx context.Context, req ActionRequest) ([]string, error) {
	holder := b.world.Character(req.Holder)

	switch req.Action {
	case "give":
		oi, err := b.world.Spawn(req.Object, req.Quantity)
		if err != nil {
			return nil, err
		}
		holder.Inventory.Add(oi)
		return []string{oi.InstanceId}, nil
	case "use":
		return nil, b.guard.Use(ctx, holder, req.Instance)
	case "drop":
		oi, err := b.guard.Drop(ctx, holder, req.Instance)
		if err != nil {
			return nil, err
		}
		return []string{oi.InstanceId}, nil
	case "put":
		if req.Container == "" {
			return nil, fmt.Errorf("container is required")
		}
		return nil, b.guard.Put(ctx, holder, req.Instance, b.world.Container(req.Container, req.Kind))
	case "take":
		if req.Container == "" {
			return nil, fmt.Errorf("container is required")
		}
		if err := b.guard.TakeOut(ctx, holder, req.Instance, b.world.Container(req.Container, req.Kind)); err != nil {
			return nil, err
		}
		return []string{req.Instance}, nil
	case "split":
		part, err := holder.Split(req.Instance, req.Quantity)
		if err != nil {
			return nil, err
		}
		return []string{part.InstanceId}, nil
	case "command":
		return nil, b.guard.Command(ctx, holder, req.Line)
	case "equip":
		return nil, b.guard.Equip(ctx, holder, req.Slot, req.Instance)
	case "transfer":
		from, err := b.world.GetCharacter(req.From)
		if err != nil {
			return nil, err
		}
		return nil, b.guard.Transfer(ctx, holder, from, b.world.Character(req.To), req.Instance)
	case "death":
		var ids []string
		for _, oi := range b.guard.Death(ctx, holder, req.KeepInventory) {
			ids = append(ids, oi.InstanceId)
		}
		return ids, nil
	case "disconnect":
		b.guard.Disconnect(ctx, req.Holder)
		return nil, b.world.RemoveCharacter(req.Holder)
	default:
		return nil, fmt.Errorf("unknown action %q", req.Action)
	}
}

type HolderReply struct {
	Id       string `json:"id"`
	Items    int    `json:"items"`
	Marked   int    `json:"marked"`
	InCombat bool   `json:"in_combat,omitempty"`
	armory.WeightUsage
}

type HoldersReply struct {
	Holders []HolderReply `json:"holders"`
}

// handleHolders lists every known holder with its mark and weight state.
func (b *Bridge) handleHolders(ctx context.Context, _ []byte) any {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := driver.Call(ctx, b.ctl, func(context.Context) (HoldersReply, error) {
		tagged := map[string]bool{}
		if b.tagger != nil {
			for _, id := range b.tagger.Tagged() {
				tagged[id] = true
			}
		}

		reply := HoldersReply{Holders: []HolderReply{}}
		for _, id := range b.world.CharacterIds() {
			c, err := b.world.GetCharacter(id)
			if err != nil {
				continue
			}
			reply.Holders = append(reply.Holders, HolderReply{
				Id:          id,
				Items:       len(c.Items()),
				Marked:      len(b.engine.MarkedItems(c)),
				InCombat:    tagged[id],
				WeightUsage: b.engine.WeightUsage(id),
			})
		}
		return reply, nil
	})
	if err != nil {
		return err
	}
	return reply
}
