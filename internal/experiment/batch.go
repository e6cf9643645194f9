package experiment

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/spikelab/internal/datastore"
)

// BatchItem pairs an experiment with its own data store. Experiments in a
// batch must not share a model: a model drives one trial at a time.
type BatchItem struct {
	Experiment Experiment
	Store      datastore.DataStore
}

// RunBatch runs independent experiments concurrently, at most workers at a
// time, presenting each experiment's full stimulus list. It returns the
// per-item simulation wall times; the first failure cancels the remaining
// items.
func RunBatch(ctx context.Context, items []BatchItem, workers int) ([]time.Duration, error) {
	if workers <= 0 {
		workers = 1
	}

	times := make([]time.Duration, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			elapsed, err := item.Experiment.Run(item.Store, item.Experiment.Stimuli())
			times[i] = elapsed
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return times, err
	}
	return times, nil
}
