package command

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-armory/internal/messaging"
	"github.com/pixil98/go-testutil"
)

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "armory.yaml")
	if err := os.WriteFile(policyPath, []byte("weapon-limits:\n  ak47: 1\n"), 0o644); err != nil {
		t.Fatalf("writing policy: %v", err)
	}

	valid := func() Config {
		return Config{
			TickInterval: "100ms",
			PolicyPath:   policyPath,
			Objects:      AssetConfig{Path: dir},
		}
	}

	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"bad tick interval": {
			mutate: func(c *Config) { c.TickInterval = "soon" },
			expErr: "parsing tick_interval",
		},
		"tick interval too short": {
			mutate: func(c *Config) { c.TickInterval = "1ms" },
			expErr: "tick_interval must be at least",
		},
		"missing policy": {
			mutate: func(c *Config) { c.PolicyPath = "" },
			expErr: "policy_path is required",
		},
		"policy does not exist": {
			mutate: func(c *Config) { c.PolicyPath = filepath.Join(dir, "missing.yaml") },
			expErr: "invalid policy_path",
		},
		"missing objects path": {
			mutate: func(c *Config) { c.Objects.Path = "" },
			expErr: "objects: path is required",
		},
		"bad tag duration": {
			mutate: func(c *Config) { c.Combat.TagDuration = "-5s" },
			expErr: "combat.tag_duration must be positive",
		},
		"bad nats timeout": {
			mutate: func(c *Config) { c.Nats.StartTimeout = "later" },
			expErr: "parsing nats.start_timeout",
		},
		"bad request timeout": {
			mutate: func(c *Config) { c.Nats.RequestTimeout = "whenever" },
			expErr: "parsing nats.request_timeout",
		},
		"zero request timeout": {
			mutate: func(c *Config) { c.Nats.RequestTimeout = "0s" },
			expErr: "nats.request_timeout must be positive",
		},
		"random port": {
			mutate: func(c *Config) { c.Nats.Port = -1 },
		},
		"port out of range": {
			mutate: func(c *Config) { c.Nats.Port = 70000 },
			expErr: "nats.port 70000 is out of range",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestCombatConfig_BuildTagger(t *testing.T) {
	c := CombatConfig{TagDuration: "30s"}
	tagger, err := c.buildTagger(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tagger.Tag("p1")
	testutil.AssertEqual(t, "in combat", tagger.InCombat("p1"), true)
}

func TestNatsConfig_RequestTimeout(t *testing.T) {
	tests := map[string]struct {
		raw string
		exp time.Duration
	}{
		"unset":    {raw: "", exp: messaging.DefaultRequestTimeout},
		"set":      {raw: "250ms", exp: 250 * time.Millisecond},
		"negative": {raw: "-1s", exp: messaging.DefaultRequestTimeout},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			n := NatsConfig{RequestTimeout: tt.raw}
			testutil.AssertEqual(t, "timeout", n.requestTimeout(), tt.exp)
			testutil.AssertEqual(t, "opts", len(n.bridgeOpts()), 1)
		})
	}
}
