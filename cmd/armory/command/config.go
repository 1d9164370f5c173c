package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
)

const minTickInterval = 50 * time.Millisecond

type Config struct {
	TickInterval string       `json:"tick_interval"`
	PolicyPath   string       `json:"policy_path"`
	Objects      AssetConfig  `json:"objects"`
	Combat       CombatConfig `json:"combat"`
	Nats         NatsConfig   `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < minTickInterval {
		el.Add(fmt.Errorf("tick_interval must be at least %s", minTickInterval))
	}

	if c.PolicyPath == "" {
		el.Add(fmt.Errorf("policy_path is required"))
	} else if _, err := os.Stat(c.PolicyPath); err != nil {
		el.Add(fmt.Errorf("invalid policy_path %q: %w", c.PolicyPath, err))
	}

	el.Add(c.Objects.Validate("objects"))
	el.Add(c.Combat.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}
