package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-armory/internal/armory"
	"github.com/pixil98/go-armory/internal/driver"
	"github.com/pixil98/go-armory/internal/game"
	"github.com/pixil98/go-armory/internal/guard"
	"github.com/pixil98/go-armory/internal/messaging"
	"github.com/pixil98/go-armory/internal/policy"
	"github.com/pixil98/go-armory/internal/scheduler"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load definitions and policy
	objects, err := cfg.Objects.BuildObjectStore()
	if err != nil {
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	src := policy.YAMLFile(cfg.PolicyPath)
	store := policy.NewStore()
	if err := store.Reload(context.Background(), src); err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}

	// Messaging
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	notifier := messaging.NewNotifier(natsServer)

	// Engine and its collaborators
	tagger, err := cfg.Combat.buildTagger(notifier)
	if err != nil {
		return nil, fmt.Errorf("creating combat tagger: %w", err)
	}
	sched := scheduler.New()

	engine := armory.NewEngine(store, game.NewTitleResolver(objects),
		armory.WithCombat(tagger),
		armory.WithDeferrer(sched),
	)
	engine.AddObserver(notifier)

	world := game.NewWorld(objects)
	g := guard.New(engine, store, sched, guard.WithNotifier(notifier))

	// Setup the driver; combat expiry runs before deferred work
	d := driver.NewDriver([]driver.Manager{
		tagger,
		sched,
	}, driver.WithTickLength(cfg.tickInterval()))

	bridgeOpts := append(cfg.Nats.bridgeOpts(),
		messaging.WithObjects(objects),
		messaging.WithTagger(tagger),
		messaging.WithWorld(world, g),
	)
	bridge := messaging.NewBridge(natsServer, d, engine, store, src, bridgeOpts...)

	// Create a worker list
	return service.WorkerList{
		"nats":   natsServer,
		"driver": d,
		"bridge": bridge,
	}, nil
}
