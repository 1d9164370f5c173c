package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-armory/internal/combat"
	"github.com/pixil98/go-errors"
)

type CombatConfig struct {
	TagDuration string `json:"tag_duration"`
}

func (c *CombatConfig) validate() error {
	el := errors.NewErrorList()

	if c.TagDuration != "" {
		d, err := time.ParseDuration(c.TagDuration)
		if err != nil {
			el.Add(fmt.Errorf("parsing combat.tag_duration: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("combat.tag_duration must be positive"))
		}
	}

	return el.Err()
}

func (c *CombatConfig) buildTagger(pub combat.MessagePublisher) (*combat.Tagger, error) {
	opts := []combat.TaggerOpt{combat.WithPublisher(pub)}
	if c.TagDuration != "" {
		d, err := time.ParseDuration(c.TagDuration)
		if err != nil {
			return nil, fmt.Errorf("parsing tag_duration: %w", err)
		}
		opts = append(opts, combat.WithTagDuration(d))
	}

	return combat.NewTagger(opts...), nil
}
