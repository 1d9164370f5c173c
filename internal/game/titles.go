package game

import (
	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/storage"
)

// TitleResolver resolves item titles from the object definitions.
type TitleResolver struct {
	objects storage.Storer[*Object]
}

func NewTitleResolver(objects storage.Storer[*Object]) *TitleResolver {
	return &TitleResolver{objects: objects}
}

// TitleOf returns the title of the item's definition. Items that are not
// object instances, or whose definition has no title, do not resolve.
func (r *TitleResolver) TitleOf(item armory.Item) (string, bool) {
	oi, ok := item.(*ObjectInstance)
	if !ok || oi == nil {
		return "", false
	}

	obj, ok := r.objects.Get(oi.ObjectId)
	if !ok || obj == nil || obj.Title == "" {
		return "", false
	}
	return obj.Title, true
}
