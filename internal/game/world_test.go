package game

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWorld_Characters(t *testing.T) {
	w := NewWorld(mockObjects{})

	c := w.Character("p1")
	testutil.AssertEqual(t, "same character", w.Character("p1"), c)
	testutil.AssertEqual(t, "name", c.Name, "p1")

	got, err := w.GetCharacter("p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "get", got, c)

	w.Character("a0")
	ids := w.CharacterIds()
	testutil.AssertEqual(t, "count", len(ids), 2)
	testutil.AssertEqual(t, "sorted", ids[0], "a0")

	if err := w.RemoveCharacter("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = w.GetCharacter("p1")
	testutil.AssertEqual(t, "removed", errors.Is(err, ErrCharacterNotFound), true)
	testutil.AssertEqual(t, "remove again", errors.Is(w.RemoveCharacter("p1"), ErrCharacterNotFound), true)
}

func TestWorld_Container(t *testing.T) {
	w := NewWorld(mockObjects{})

	c := w.Container("box", "chest")
	testutil.AssertEqual(t, "kind", c.Kind, "chest")

	again := w.Container("box", "anvil")
	testutil.AssertEqual(t, "same container", again, c)
	testutil.AssertEqual(t, "kind kept", again.Kind, "chest")
}

func TestWorld_Spawn(t *testing.T) {
	w := NewWorld(mockObjects{
		"ak":      {Aliases: []string{"ak"}, ShortDesc: "an ak", TypeStr: "weapon", Title: "AK47"},
		"grenade": {Aliases: []string{"grenade"}, ShortDesc: "a grenade", TypeStr: "weapon", Title: "GRENADE", MaxStack: 4},
	})

	tests := map[string]struct {
		object string
		qty    int
		expQty int
		expErr string
	}{
		"single":         {object: "ak", qty: 1, expQty: 1},
		"zero is one":    {object: "ak", qty: 0, expQty: 1},
		"stack":          {object: "grenade", qty: 3, expQty: 3},
		"not stackable":  {object: "ak", qty: 2, expErr: "does not stack"},
		"over max stack": {object: "grenade", qty: 5, expErr: "at most 4"},
		"unknown object": {object: "rpg", qty: 1, expErr: "unknown object"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			oi, err := w.Spawn(tt.object, tt.qty)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "object", oi.ObjectId, tt.object)
			testutil.AssertEqual(t, "quantity", oi.Quantity(), tt.expQty)
			testutil.AssertEqual(t, "has id", oi.InstanceId != "", true)
		})
	}
}
