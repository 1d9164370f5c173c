package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-armory/internal/messaging"
	"github.com/pixil98/go-errors"
)

// NatsConfig configures the embedded server the armory bridge listens on.
// Port -1 lets the server pick a free port.
type NatsConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	StartTimeout   string `json:"start_timeout"`
	RequestTimeout string `json:"request_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.Port < messaging.RandomPort || n.Port > 65535 {
		el.Add(fmt.Errorf("nats.port %d is out of range", n.Port))
	}
	el.Add(positiveDuration("nats.start_timeout", n.StartTimeout))
	el.Add(positiveDuration("nats.request_timeout", n.RequestTimeout))

	return el.Err()
}

func positiveDuration(name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// requestTimeout bounds how long a bridge request waits on the driver.
func (n *NatsConfig) requestTimeout() time.Duration {
	d, err := time.ParseDuration(n.RequestTimeout)
	if err != nil || d <= 0 {
		return messaging.DefaultRequestTimeout
	}
	return d
}

func (n *NatsConfig) bridgeOpts() []messaging.BridgeOpt {
	return []messaging.BridgeOpt{messaging.WithRequestTimeout(n.requestTimeout())}
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if n.StartTimeout != "" {
		d, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	return messaging.NewNatsServer(opts...)
}
