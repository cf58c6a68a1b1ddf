package state

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/dmitrijs2005/readkeeper/internal/metrics"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Connectivity tracks whether the backing service is currently reachable.
// It starts offline until the first successful probe.
type Connectivity struct {
	online atomic.Bool
	log    logging.Logger

	mu       sync.Mutex
	onOnline []func(ctx context.Context)
}

func NewConnectivity(log logging.Logger) *Connectivity {
	return &Connectivity{log: log}
}

func (c *Connectivity) Mode() Mode {
	if c.online.Load() {
		return ModeOnline
	}
	return ModeOffline
}

func (c *Connectivity) Online() bool {
	return c.online.Load()
}

// OnOnline registers fn to run on every switch from offline to online,
// including the first successful probe. Callbacks run on the caller of
// SetOnline, in registration order.
func (c *Connectivity) OnOnline(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOnline = append(c.onOnline, fn)
}

// SetOnline records the new mode and logs transitions.
func (c *Connectivity) SetOnline(ctx context.Context, online bool) {
	if c.online.Swap(online) == online {
		return
	}
	if online {
		metrics.Online.Set(1)
	} else {
		metrics.Online.Set(0)
	}
	if c.log != nil {
		c.log.Info(ctx, "switched mode", "mode", c.Mode())
	}
	if !online {
		return
	}

	c.mu.Lock()
	hooks := append(([]func(context.Context))(nil), c.onOnline...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// Watch probes the service every interval until ctx is done. The first probe
// runs immediately.
func (c *Connectivity) Watch(ctx context.Context, interval, timeout time.Duration, probe func(ctx context.Context) error) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err := probe(pctx)
		cancel()
		c.SetOnline(ctx, err == nil)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
