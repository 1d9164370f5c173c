package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-armory/internal/storage"
)

type AssetConfig struct {
	Path string `json:"path"`
}

func (c *AssetConfig) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig) BuildObjectStore() (*storage.FileStore[*game.Object], error) {
	return storage.NewFileStore[*game.Object](c.Path)
}
