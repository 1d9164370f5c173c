package storage

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

// markFlags has the shape the armory keeps under its extension key.
type markFlags struct {
	Marked  bool `json:"marked"`
	DropTag bool `json:"drop_tag"`
}

func TestExtensionState_MarkRoundTrip(t *testing.T) {
	tests := map[string]struct {
		initial ExtensionState
		flags   markFlags
		expKeys int
	}{
		"fresh instance": {
			initial: nil,
			flags:   markFlags{Marked: true, DropTag: true},
			expKeys: 1,
		},
		"instance carrying other data": {
			initial: ExtensionState{"durability": []byte(`{"left":12}`)},
			flags:   markFlags{Marked: true, DropTag: true},
			expKeys: 2,
		},
		"overwrites an old mark": {
			initial: ExtensionState{"armory": []byte(`{"marked":false,"drop_tag":true}`)},
			flags:   markFlags{Marked: true},
			expKeys: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := tt.initial
			if err := e.Set("armory", tt.flags); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var got markFlags
			found, err := e.Get("armory", &got)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "found", found, true)
			testutil.AssertEqual(t, "flags", got, tt.flags)
			testutil.AssertEqual(t, "keys", len(e.Keys()), tt.expKeys)
		})
	}
}

func TestExtensionState_UnmarkedInstance(t *testing.T) {
	var e ExtensionState

	var got markFlags
	found, err := e.Get("armory", &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, false)
	testutil.AssertEqual(t, "flags", got, markFlags{})
	testutil.AssertEqual(t, "has", e.Has("armory"), false)
}

func TestExtensionState_CorruptMark(t *testing.T) {
	tests := map[string]struct {
		raw string
	}{
		"truncated object": {raw: `{"marked":tr`},
		"wrong shape":      {raw: `["marked"]`},
		"wrong field type": {raw: `{"marked":"yes"}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := ExtensionState{"armory": []byte(tt.raw)}

			var got markFlags
			found, err := e.Get("armory", &got)
			testutil.AssertEqual(t, "found", found, true)
			testutil.AssertErrorContains(t, err, `unmarshal extension "armory"`)
		})
	}
}

func TestExtensionState_SetUnencodable(t *testing.T) {
	var e ExtensionState
	err := e.Set("armory", func() {})
	testutil.AssertErrorContains(t, err, `marshal extension "armory"`)
	testutil.AssertEqual(t, "has", e.Has("armory"), false)
}

func TestExtensionState_ClearMark(t *testing.T) {
	tests := map[string]struct {
		initial  ExtensionState
		expKeys  []string
		expEmpty bool
	}{
		"nil state": {
			initial:  nil,
			expEmpty: true,
		},
		"never marked": {
			initial: ExtensionState{"durability": []byte(`{"left":3}`)},
			expKeys: []string{"durability"},
		},
		"marked next to other subsystems": {
			initial: ExtensionState{
				"armory":     []byte(`{"marked":true,"drop_tag":true}`),
				"durability": []byte(`{"left":3}`),
				"owner":      []byte(`"p1"`),
			},
			expKeys: []string{"durability", "owner"},
		},
		"only the mark": {
			initial:  ExtensionState{"armory": []byte(`{"marked":true}`)},
			expEmpty: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := tt.initial
			e.Delete("armory")

			testutil.AssertEqual(t, "has", e.Has("armory"), false)
			keys := e.Keys()
			if tt.expEmpty {
				testutil.AssertEqual(t, "keys", len(keys), 0)
				return
			}
			testutil.AssertEqual(t, "keys", len(keys), len(tt.expKeys))
			for i := range tt.expKeys {
				testutil.AssertEqual(t, "key", keys[i], tt.expKeys[i])
			}
		})
	}
}

func TestExtensionState_EmptyValue(t *testing.T) {
	e := ExtensionState{"armory": nil}

	var got markFlags
	found, err := e.Get("armory", &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, false)
	testutil.AssertEqual(t, "has", e.Has("armory"), false)
}
