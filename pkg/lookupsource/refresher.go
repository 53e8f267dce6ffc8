package lookupsource

import (
	"context"
	"net/url"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/pkg/lookup"
)

// Refresher keeps a lookup.Manager's snapshot current by re-fetching
// LookupData on a schedule: a ticker when DownloadPeriod is set, or an
// fsnotify watch on the file when LookupData is a bare filesystem path and
// no period was configured. A remote LookupData with no configured period
// is fetched once and never refreshed again.
type Refresher struct {
	location string
	auth     TokenSource
	manager  *lookup.Manager
	period   time.Duration
}

// NewRefresher builds a Refresher. It does not perform the initial fetch;
// call Once before Run to populate the manager's first snapshot.
func NewRefresher(location string, auth TokenSource, manager *lookup.Manager, period time.Duration) *Refresher {
	return &Refresher{location: location, auth: auth, manager: manager, period: period}
}

// Once performs a single fetch-and-install cycle.
func (r *Refresher) Once(ctx context.Context) error {
	data, err := Fetch(ctx, r.location, r.auth)
	if err != nil {
		return err
	}
	result, err := r.manager.UpdateData(lookup.ActionStartAndFinish, data)
	if err != nil {
		return err
	}
	logger.Info("lookup data refreshed", "result", result.String(), "entries", len(data))
	return nil
}

// Run blocks until ctx is cancelled, refreshing the manager's snapshot per
// the schedule described on Refresher. It is meant to be run inside an
// errgroup alongside the HTTP listener.
func (r *Refresher) Run(ctx context.Context) error {
	if r.period > 0 {
		return r.runTicker(ctx)
	}
	if isFilesystemPath(r.location) {
		return r.runWatch(ctx)
	}
	<-ctx.Done()
	return nil
}

func (r *Refresher) runTicker(ctx context.Context) error {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Once(ctx); err != nil {
				logger.Error("scheduled lookup data refresh failed", "error", err)
			}
		}
	}
}

// runWatch uses fsnotify to re-fetch the file on every write/rename/create
// event, coalescing bursts with a short debounce — editors and atomic
// rename-based writers often emit several events for one logical update.
func (r *Refresher) runWatch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(r.location); err != nil {
		return err
	}

	const debounce = 200 * time.Millisecond
	var pending *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounce, func() {
				if err := r.Once(ctx); err != nil {
					logger.Error("fsnotify-triggered lookup data refresh failed", "error", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("fsnotify watch error", "error", err)
		}
	}
}

func isFilesystemPath(location string) bool {
	u, err := url.Parse(location)
	return err != nil || u.Scheme == ""
}
