package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/go-armory/internal/storage"
	"github.com/pixil98/go-errors"
)

// ObjectType defines the category of an object.
type ObjectType int

const (
	ObjectTypeUnknown ObjectType = iota
	ObjectTypeWeapon
	ObjectTypeArmor
	ObjectTypeOther
)

// Object defines a type of item loaded from asset files. Many instances can
// be spawned from one definition.
type Object struct {
	// Aliases are keywords players can use to target this object
	Aliases []string `json:"aliases"`

	// ShortDesc is used in messages (e.g., "You drop a battered rifle.")
	ShortDesc string `json:"short_desc"`

	// Title is the logical weapon title armory rules are keyed by.
	Title string `json:"title,omitempty"`

	// TypeStr is the object type from JSON
	TypeStr string `json:"type"`

	// Slot is the equipment slot the object is worn in, if any.
	Slot string `json:"slot,omitempty"`

	// MaxStack is how many units one instance may hold. Zero means one.
	MaxStack int `json:"max_stack,omitempty"`
}

// Type returns the parsed ObjectType from TypeStr.
func (o *Object) Type() ObjectType {
	switch strings.ToLower(o.TypeStr) {
	case "weapon":
		return ObjectTypeWeapon
	case "armor":
		return ObjectTypeArmor
	case "other":
		return ObjectTypeOther
	default:
		return ObjectTypeUnknown
	}
}

// Stackable reports whether one instance may hold several units.
func (o *Object) Stackable() bool {
	return o.MaxStack > 1
}

// Validate satisfies storage.ValidatingSpec
func (o *Object) Validate() error {
	if o == nil {
		return fmt.Errorf("object spec is required")
	}

	el := errors.NewErrorList()
	if len(o.Aliases) < 1 {
		el.Add(fmt.Errorf("object alias is required"))
	}
	if o.ShortDesc == "" {
		el.Add(fmt.Errorf("object short description is required"))
	}
	if o.TypeStr == "" {
		el.Add(fmt.Errorf("object type is required"))
	} else if o.Type() == ObjectTypeUnknown {
		el.Add(fmt.Errorf("object type %q is invalid", o.TypeStr))
	}
	if o.Type() == ObjectTypeWeapon && strings.TrimSpace(o.Title) == "" {
		el.Add(fmt.Errorf("weapon title is required"))
	}
	if o.Type() == ObjectTypeArmor && o.Slot == "" {
		el.Add(fmt.Errorf("armor slot is required"))
	}
	if o.MaxStack < 0 {
		el.Add(fmt.Errorf("max stack must not be negative"))
	}
	return el.Err()
}

// ObjectInstance is a single spawned instance of an Object definition.
type ObjectInstance struct {
	InstanceId string                 `json:"id"`
	ObjectId   string                 `json:"object_id"`
	Count      int                    `json:"quantity"`
	Ext        storage.ExtensionState `json:"ext,omitempty"`
}

// NewObjectInstance spawns qty units of the object as one instance.
func NewObjectInstance(objectId string, qty int) *ObjectInstance {
	return &ObjectInstance{
		InstanceId: uuid.New().String(),
		ObjectId:   objectId,
		Count:      max(qty, 1),
	}
}

func (oi *ObjectInstance) InstanceID() string { return oi.InstanceId }

func (oi *ObjectInstance) Quantity() int { return oi.Count }

func (oi *ObjectInstance) Extensions() *storage.ExtensionState { return &oi.Ext }

// Split moves n units into a new instance. Extension data stays with the
// original.
func (oi *ObjectInstance) Split(n int) (*ObjectInstance, error) {
	if n <= 0 || n >= oi.Count {
		return nil, fmt.Errorf("cannot split %d from a stack of %d", n, oi.Count)
	}
	oi.Count -= n
	return NewObjectInstance(oi.ObjectId, n), nil
}
