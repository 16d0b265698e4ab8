package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"statuspage-cron/client"
	"statuspage-cron/models"
)

const errorMessage = "Failed obtaining metrics from source"

// UpdaterOptions wires a MetricsUpdater. Zero Timeout and Workers pick defaults.
type UpdaterOptions struct {
	Sources SourceRepository
	Factory client.Factory
	Builder *SnapshotBuilder
	Store   *MetricsStore
	Sinks   []Sink
	Timeout time.Duration
	Workers int
	Logger  logrus.FieldLogger
}

// MetricsUpdater runs one update of every configured source per call to Run.
type MetricsUpdater struct {
	sources SourceRepository
	factory client.Factory
	builder *SnapshotBuilder
	store   *MetricsStore
	sinks   []Sink
	timeout time.Duration
	workers int
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewMetricsUpdater(opts UpdaterOptions) *MetricsUpdater {
	u := &MetricsUpdater{
		sources: opts.Sources,
		factory: opts.Factory,
		builder: opts.Builder,
		store:   opts.Store,
		sinks:   opts.Sinks,
		timeout: opts.Timeout,
		workers: opts.Workers,
		log:     opts.Logger,
		now:     time.Now,
	}
	if u.factory == nil {
		u.factory = client.DefaultFactory
	}
	if u.timeout <= 0 {
		u.timeout = 30 * time.Second
	}
	if u.workers <= 0 {
		u.workers = 4
	}
	if u.log == nil {
		u.log = logrus.StandardLogger()
	}
	if u.builder == nil {
		u.builder = NewSnapshotBuilder(SchemaV2, u.log)
	}
	return u
}

// Run updates every source once. Sources are processed independently: the
// failure of one is recorded in the store and never stops the others.
// The returned error is only about loading the source list.
func (u *MetricsUpdater) Run(ctx context.Context) error {
	start := time.Now()

	sources, err := u.sources.Sources(ctx)
	if err == nil {
		err = sources.Validate()
	}
	if err != nil {
		u.log.WithError(err).Error("Failed loading sources, keeping current metrics")
		return fmt.Errorf("load sources: %w", err)
	}

	for _, label := range u.store.Retain(sources.Labels()) {
		u.log.WithField("source", label).Info("Source no longer configured, dropping its metrics")
		for _, sink := range u.sinks {
			u.publish(u.log.WithField("source", label), "forget", func() error { return sink.Forget(ctx, label) })
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(u.workers)
	for _, source := range sources {
		source := source
		g.Go(func() error {
			u.updateSource(ctx, source)
			return nil
		})
	}
	_ = g.Wait()

	u.log.WithFields(logrus.Fields{
		"sources":  len(sources),
		"duration": time.Since(start),
	}).Info("Metrics updated")
	u.log.Debug(u.store.String())
	return nil
}

func (u *MetricsUpdater) updateSource(ctx context.Context, source models.Source) {
	logger := u.log.WithField("source", source.Label)

	snapshot, err := u.build(ctx, source)
	if err != nil {
		sourceErr := models.SourceError{
			SourceLabel: source.Label,
			Message:     errorMessage,
			Cause:       err,
			At:          u.now(),
		}
		logger.WithError(err).Warnf("%s %s", errorMessage, source)
		u.store.ReportError(source.Label, sourceErr)
		for _, sink := range u.sinks {
			u.publish(logger, "source error", func() error { return sink.PublishError(ctx, sourceErr) })
		}
		return
	}

	u.store.Commit(source.Label, snapshot)
	logger.WithField("resources", snapshot.Len()).Debug("Snapshot committed")
	for _, sink := range u.sinks {
		u.publish(logger, "snapshot", func() error { return sink.PublishSnapshot(ctx, snapshot) })
	}
}

// publish runs one sink call. Sink errors and panics are logged and never reach the store.
func (u *MetricsUpdater) publish(logger logrus.FieldLogger, what string, call func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Errorf("Sink panicked publishing %s", what)
		}
	}()
	if err := call(); err != nil {
		logger.WithError(err).Warnf("Failed publishing %s", what)
	}
}

// build bounds the whole fetch of one source by the timeout and always
// releases the client, also when the build panics.
func (u *MetricsUpdater) build(ctx context.Context, source models.Source) (snapshot models.Snapshot, err error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	sp := u.factory.Create(source.URL, source.APIKey)
	defer func() {
		if cerr := sp.Close(); cerr != nil {
			u.log.WithField("source", source.Label).WithError(cerr).Debug("Failed closing client")
		}
	}()

	return u.builder.Build(ctx, source, sp)
}
