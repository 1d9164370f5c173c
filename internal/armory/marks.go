package armory

import (
	"fmt"
)

// ExtensionKey is the extension entry holding an item's mark flags.
const ExtensionKey = "armory"

// MarkStore reads and writes the mark flags carried by an item.
type MarkStore interface {
	IsMarked(Item) bool
	HasDropTag(Item) bool
	Mark(Item) error
	Clear(Item) error
}

type markState struct {
	Marked  bool `json:"marked"`
	DropTag bool `json:"drop_tag"`
}

// ExtensionMarks keeps mark flags in the item's extension state so they
// travel with the instance wherever it is saved.
type ExtensionMarks struct{}

func (ExtensionMarks) read(item Item) markState {
	var st markState
	if item == nil {
		return st
	}
	ext := item.Extensions()
	if ext == nil {
		return st
	}
	// An unreadable entry is treated as unmarked.
	if _, err := ext.Get(ExtensionKey, &st); err != nil {
		return markState{}
	}
	return st
}

func (m ExtensionMarks) IsMarked(item Item) bool {
	return m.read(item).Marked
}

func (m ExtensionMarks) HasDropTag(item Item) bool {
	return m.read(item).DropTag
}

func (ExtensionMarks) Mark(item Item) error {
	if item == nil {
		return fmt.Errorf("marking nil item")
	}
	ext := item.Extensions()
	if ext == nil {
		return fmt.Errorf("item %s has no extension state", item.InstanceID())
	}
	return ext.Set(ExtensionKey, markState{Marked: true, DropTag: true})
}

func (ExtensionMarks) Clear(item Item) error {
	if item == nil {
		return nil
	}
	if ext := item.Extensions(); ext != nil {
		ext.Delete(ExtensionKey)
	}
	return nil
}
