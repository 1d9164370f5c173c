package game

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pixil98/go-armory/internal/storage"
)

// World holds the characters and containers items move between.
type World struct {
	mu         sync.RWMutex
	objects    storage.Storer[*Object]
	characters map[string]*Character
	containers map[string]*Container
}

func NewWorld(objects storage.Storer[*Object]) *World {
	return &World{
		objects:    objects,
		characters: make(map[string]*Character),
		containers: make(map[string]*Container),
	}
}

// Character returns the character with the given id, creating it on first
// use.
func (w *World) Character(id string) *Character {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.characters[id]
	if !ok {
		c = NewCharacter(id, id)
		w.characters[id] = c
	}
	return c
}

// GetCharacter returns a known character.
func (w *World) GetCharacter(id string) (*Character, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	c, ok := w.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	return c, nil
}

// RemoveCharacter forgets a character and everything it holds.
func (w *World) RemoveCharacter(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.characters[id]; !ok {
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	delete(w.characters, id)
	return nil
}

// CharacterIds returns the known character ids in order.
func (w *World) CharacterIds() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]string, 0, len(w.characters))
	for id := range w.characters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Container returns the container with the given id, creating it with kind
// on first use. The kind of an existing container is not changed.
func (w *World) Container(id, kind string) *Container {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.containers[id]
	if !ok {
		c = NewContainer(id, kind)
		w.containers[id] = c
	}
	return c
}

// Spawn creates a new instance of a defined object.
func (w *World) Spawn(objectId string, qty int) (*ObjectInstance, error) {
	obj, ok := w.objects.Get(objectId)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, objectId)
	}
	if qty > 1 && !obj.Stackable() {
		return nil, fmt.Errorf("%s does not stack", objectId)
	}
	if obj.Stackable() && qty > obj.MaxStack {
		return nil, fmt.Errorf("%s stacks to at most %d", objectId, obj.MaxStack)
	}
	return NewObjectInstance(objectId, qty), nil
}
