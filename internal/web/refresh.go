package web

import (
	"context"
	"sync"
	"time"

	"tutelliv/internal/client"
	"tutelliv/internal/events"
	"tutelliv/pkg/types"

	"github.com/sirupsen/logrus"
)

// Snapshot is the cached view of the API state the pages render from.
// Err holds the most recent reload failure; pages surface it as a
// banner instead of mixing it with stale rows.
type Snapshot struct {
	Missions      []*types.Mission
	Beneficiaries []*types.Beneficiary
	Invoices      []*types.Invoice
	Stats         *types.Stats

	LoadedAt time.Time
	Err      error
}

// Refresher owns the snapshot and reloads it on change events from the
// API, on a fixed-interval ticker fallback, and on explicit page
// refreshes. The two trigger paths race harmlessly: a reload is a
// wholesale replacement.
type Refresher struct {
	logger     *logrus.Logger
	api        *client.Client
	subscriber events.Subscriber
	interval   time.Duration

	mu    sync.RWMutex
	token string
	snap  Snapshot

	kick chan struct{}
}

func reloadAll() events.Reload {
	return events.Reload{Missions: true, Beneficiaries: true, Invoices: true, Stats: true}
}

func NewRefresher(logger *logrus.Logger, api *client.Client, subscriber events.Subscriber, interval time.Duration) *Refresher {
	return &Refresher{
		logger:     logger,
		api:        api,
		subscriber: subscriber,
		interval:   interval,
		kick:       make(chan struct{}, 1),
	}
}

// Adopt records a session token for background reloads. The API does
// not scope reads per user, so any valid session token serves.
func (r *Refresher) Adopt(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
}

func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Kick requests an asynchronous reload. Non-blocking; a pending kick
// absorbs further ones.
func (r *Refresher) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run drives the reload loop until ctx is canceled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.subscriber.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-r.subscriber.Events():
			if !ok {
				return
			}
			reload := events.Dispatch(msg.Type)
			if !reload.Any() {
				continue
			}
			r.Reload(ctx, reload)
		case <-ticker.C:
			r.Reload(ctx, reloadAll())
		case <-r.kick:
			r.Reload(ctx, reloadAll())
		}
	}
}

// Reload fetches the requested sets and swaps them into the snapshot.
// Without a session token yet there is nothing to fetch.
func (r *Refresher) Reload(ctx context.Context, sets events.Reload) {
	r.mu.RLock()
	token := r.token
	prev := r.snap
	r.mu.RUnlock()

	if token == "" {
		return
	}

	api := r.api.WithToken(token)
	next := prev
	next.Err = nil

	var err error
	if sets.Missions {
		if missions, e := api.Missions(ctx); e == nil {
			next.Missions = missions
		} else {
			err = e
		}
	}
	if sets.Beneficiaries {
		if beneficiaries, e := api.Beneficiaries(ctx); e == nil {
			next.Beneficiaries = beneficiaries
		} else {
			err = e
		}
	}
	if sets.Invoices {
		if invoices, e := api.Invoices(ctx); e == nil {
			next.Invoices = invoices
		} else {
			err = e
		}
	}
	if sets.Stats {
		if stats, e := api.Stats(ctx); e == nil {
			next.Stats = stats
		} else {
			err = e
		}
	}

	if err != nil {
		r.logger.WithError(err).Warn("snapshot reload failed")
		next.Err = err
	} else {
		next.LoadedAt = time.Now()
	}

	r.mu.Lock()
	r.snap = next
	r.mu.Unlock()
}

// EnsureLoaded reloads synchronously when the snapshot has never been
// populated, so a first page view does not render an empty shell.
func (r *Refresher) EnsureLoaded(ctx context.Context) Snapshot {
	if snap := r.Snapshot(); !snap.LoadedAt.IsZero() {
		return snap
	}
	r.Reload(ctx, reloadAll())
	return r.Snapshot()
}
