package game

import (
	"encoding/json"

	"github.com/pixil98/go-armory/internal/armory"
)

// Character is a holder of items in the world.
type Character struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	Inventory *Inventory `json:"inventory,omitempty"`
	Equipment *Equipment `json:"equipment,omitempty"`
}

func NewCharacter(id, name string) *Character {
	return &Character{
		Id:        id,
		Name:      name,
		Inventory: NewInventory(),
		Equipment: NewEquipment(),
	}
}

func (c *Character) UnmarshalJSON(b []byte) error {
	type Alias Character
	if err := json.Unmarshal(b, (*Alias)(c)); err != nil {
		return err
	}
	if c.Inventory == nil {
		c.Inventory = NewInventory()
	}
	if c.Equipment == nil {
		c.Equipment = NewEquipment()
	}
	return nil
}

func (c *Character) HolderID() string { return c.Id }

// Items lists carried instances first, then equipped ones.
func (c *Character) Items() []armory.Item {
	carried := c.Inventory.List()
	worn := c.Equipment.List()

	out := make([]armory.Item, 0, len(carried)+len(worn))
	for _, oi := range carried {
		out = append(out, oi)
	}
	for _, oi := range worn {
		out = append(out, oi)
	}
	return out
}

// Take removes an instance from wherever the character holds it.
func (c *Character) Take(instanceId string) (*ObjectInstance, error) {
	if oi := c.Inventory.Remove(instanceId); oi != nil {
		return oi, nil
	}
	if oi := c.Equipment.Remove(instanceId); oi != nil {
		return oi, nil
	}
	return nil, ErrNotCarried
}

// Find returns a held instance without removing it.
func (c *Character) Find(instanceId string) *ObjectInstance {
	if oi := c.Inventory.Get(instanceId); oi != nil {
		return oi
	}
	for _, oi := range c.Equipment.Slots {
		if oi.InstanceId == instanceId {
			return oi
		}
	}
	return nil
}

// Split moves n units of a carried stack into a new carried instance.
func (c *Character) Split(instanceId string, n int) (*ObjectInstance, error) {
	oi := c.Inventory.Get(instanceId)
	if oi == nil {
		return nil, ErrNotCarried
	}
	part, err := oi.Split(n)
	if err != nil {
		return nil, err
	}
	c.Inventory.Add(part)
	return part, nil
}

// Container is a world container items can be stored in. Kind classifies
// it for the container rules (e.g., "chest", "anvil").
type Container struct {
	Id       string     `json:"id"`
	Kind     string     `json:"kind"`
	Contents *Inventory `json:"contents,omitempty"`
}

func NewContainer(id, kind string) *Container {
	return &Container{Id: id, Kind: kind, Contents: NewInventory()}
}
