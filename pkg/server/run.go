package server

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/oakd/internal/logger"
)

// Refresher is the subset of lookupsource.Refresher Run needs: anything
// that can run until ctx is cancelled and report how it stopped.
type Refresher interface {
	Run(ctx context.Context) error
}

// Run starts the operational HTTP server and the lookup-data refresher
// together under one errgroup.Group: if either returns an error, ctx is
// cancelled so the other shuts down too, and Run returns the first error
// encountered. Cancelling ctx directly (e.g. on SIGTERM) stops both
// cleanly.
func Run(ctx context.Context, srv *Server, refresher Refresher, shutdownTimeout time.Duration) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return srv.Start(groupCtx)
	})
	group.Go(func() error {
		return refresher.Run(groupCtx)
	})

	err := group.Wait()
	if err != nil {
		logger.Error("server run loop exiting with error", "error", err)
	}
	return err
}
