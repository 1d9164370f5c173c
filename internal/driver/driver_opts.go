package driver

import (
	"context"
	"time"
)

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

// WithQueueSize sets how much submitted work may wait for the control thread.
func WithQueueSize(n int) DriverOpt {
	return func(d *Driver) {
		if n > 0 {
			d.work = make(chan func(context.Context), n)
		}
	}
}
