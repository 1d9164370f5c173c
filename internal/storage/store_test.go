package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

type mockStoreSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, path string, a Asset[*mockStoreSpec]) {
	t.Helper()

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshalling asset: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing asset: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tests := map[string]struct {
		setup    func(t *testing.T, dir string)
		expErr   string
		expCount int
	}{
		"empty directory": {
			setup: func(t *testing.T, dir string) {},
		},
		"loads assets and ignores other files": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, filepath.Join(dir, "one.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "one", Spec: &mockStoreSpec{Name: "One", Value: 1}})
				writeAsset(t, filepath.Join(dir, "two.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "two", Spec: &mockStoreSpec{Name: "Two", Value: 2}})
				if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignore me"), 0644); err != nil {
					t.Fatalf("writing file: %v", err)
				}
			},
			expCount: 2,
		},
		"walks subdirectories": {
			setup: func(t *testing.T, dir string) {
				sub := filepath.Join(dir, "rifles")
				if err := os.Mkdir(sub, 0755); err != nil {
					t.Fatalf("creating subdir: %v", err)
				}
				writeAsset(t, filepath.Join(sub, "ak.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "ak-47", Spec: &mockStoreSpec{Name: "AK"}})
			},
			expCount: 1,
		},
		"invalid json": {
			setup: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{invalid`), 0644); err != nil {
					t.Fatalf("writing file: %v", err)
				}
			},
			expErr: "unmarshalling asset",
		},
		"validation error": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, filepath.Join(dir, "v.json"), Asset[*mockStoreSpec]{Identifier: "v", Spec: &mockStoreSpec{}})
			},
			expErr: "version must be set",
		},
		"duplicate id": {
			setup: func(t *testing.T, dir string) {
				a := Asset[*mockStoreSpec]{Version: 1, Identifier: "dup", Spec: &mockStoreSpec{}}
				writeAsset(t, filepath.Join(dir, "a.json"), a)
				writeAsset(t, filepath.Join(dir, "b.json"), a)
			},
			expErr: "duplicate key detected: dup",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			store, err := NewFileStore[*mockStoreSpec](dir)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "count", len(store.GetAll()), tt.expCount)
			testutil.AssertEqual(t, "ids", len(store.Ids()), tt.expCount)
		})
	}
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*mockStoreSpec](filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestFileStore_Get(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, filepath.Join(dir, "one.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "one", Spec: &mockStoreSpec{Name: "One", Value: 1}})

	store, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := store.Get("one")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "name", got.Name, "One")
	testutil.AssertEqual(t, "value", got.Value, 1)

	missing, ok := store.Get("two")
	testutil.AssertEqual(t, "missing found", ok, false)
	if missing != nil {
		t.Errorf("expected nil, got %v", missing)
	}
}

func TestFileStore_GetAllIsCopy(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, filepath.Join(dir, "one.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "one", Spec: &mockStoreSpec{}})

	store, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := store.GetAll()
	delete(all, "one")

	_, ok := store.Get("one")
	testutil.AssertEqual(t, "still present", ok, true)
}

func TestFileStore_Reload(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, filepath.Join(dir, "one.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "one", Spec: &mockStoreSpec{Name: "One"}})

	store, err := NewFileStore[*mockStoreSpec](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeAsset(t, filepath.Join(dir, "two.json"), Asset[*mockStoreSpec]{Version: 1, Identifier: "two", Spec: &mockStoreSpec{Name: "Two"}})
	if err := store.Reload(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "count after reload", len(store.GetAll()), 2)

	// A broken file leaves the loaded records untouched.
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`nope`), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	testutil.AssertErrorContains(t, store.Reload(), "bad.json")
	testutil.AssertEqual(t, "count after failed reload", len(store.GetAll()), 2)
}
