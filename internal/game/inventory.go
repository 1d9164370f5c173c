package game

import (
	"fmt"
	"slices"
)

// Inventory holds object instances keyed by instance id.
type Inventory struct {
	Items map[string]*ObjectInstance `json:"items,omitempty"`
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		Items: make(map[string]*ObjectInstance),
	}
}

// Add adds an object instance to the inventory.
func (inv *Inventory) Add(obj *ObjectInstance) {
	if inv.Items == nil {
		inv.Items = make(map[string]*ObjectInstance)
	}
	inv.Items[obj.InstanceId] = obj
}

// Remove removes an object instance from the inventory.
// Returns the removed instance, or nil if not found.
func (inv *Inventory) Remove(instanceId string) *ObjectInstance {
	if obj, ok := inv.Items[instanceId]; ok {
		delete(inv.Items, instanceId)
		return obj
	}
	return nil
}

// Get returns an object instance by ID, or nil if not found.
func (inv *Inventory) Get(instanceId string) *ObjectInstance {
	return inv.Items[instanceId]
}

// Contains checks if an object instance is in the inventory.
func (inv *Inventory) Contains(instanceId string) bool {
	_, ok := inv.Items[instanceId]
	return ok
}

// List returns the instances ordered by instance id.
func (inv *Inventory) List() []*ObjectInstance {
	ids := make([]string, 0, len(inv.Items))
	for id := range inv.Items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*ObjectInstance, 0, len(ids))
	for _, id := range ids {
		out = append(out, inv.Items[id])
	}
	return out
}

// Equipment holds items equipped by a character, keyed by slot
// (e.g., "head", "mainhand", "offhand").
type Equipment struct {
	Slots map[string]*ObjectInstance `json:"slots,omitempty"`
}

// NewEquipment creates an empty equipment set.
func NewEquipment() *Equipment {
	return &Equipment{
		Slots: make(map[string]*ObjectInstance),
	}
}

// Equip places an object instance in the given slot.
func (eq *Equipment) Equip(slot string, obj *ObjectInstance) error {
	if eq.Slots == nil {
		eq.Slots = make(map[string]*ObjectInstance)
	}
	if _, occupied := eq.Slots[slot]; occupied {
		return fmt.Errorf("%w: %s", ErrSlotOccupied, slot)
	}
	eq.Slots[slot] = obj
	return nil
}

// GetSlot returns the object instance in the given slot, or nil if empty.
func (eq *Equipment) GetSlot(slot string) *ObjectInstance {
	return eq.Slots[slot]
}

// Remove finds and unequips an object by instance ID.
func (eq *Equipment) Remove(instanceId string) *ObjectInstance {
	for slot, obj := range eq.Slots {
		if obj.InstanceId == instanceId {
			delete(eq.Slots, slot)
			return obj
		}
	}
	return nil
}

// List returns the equipped instances ordered by slot.
func (eq *Equipment) List() []*ObjectInstance {
	slots := make([]string, 0, len(eq.Slots))
	for s := range eq.Slots {
		slots = append(slots, s)
	}
	slices.Sort(slots)

	out := make([]*ObjectInstance, 0, len(slots))
	for _, s := range slots {
		out = append(out, eq.Slots[s])
	}
	return out
}
