package country

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"countryfx/internal/adapters"
	"countryfx/internal/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseCurrency = "USD"
	defaultTopN         = 5
	summaryTimeout      = 30 * time.Second
)

// ErrSummary wraps failures of the post-commit summary step. It never reaches
// the caller of Run.
var ErrSummary = errors.New("refresh summary generation failed")

type OrchestratorConfig struct {
	BaseCurrency string
	TopN         int
}

// Orchestrator drives one refresh run end to end: fetch, transform, batch,
// commit, then kick off the summary artifact.
type Orchestrator struct {
	countries   adapters.CountrySource
	rates       adapters.RateSource
	store       adapters.CountryStore
	summary     adapters.SummaryGenerator
	transformer *Transformer
	clock       clockwork.Clock
	cfg         OrchestratorConfig

	pending sync.WaitGroup
}

func NewOrchestrator(
	countries adapters.CountrySource,
	rates adapters.RateSource,
	store adapters.CountryStore,
	summary adapters.SummaryGenerator,
	transformer *Transformer,
	clock clockwork.Clock,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = DefaultBaseCurrency
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if transformer == nil {
		transformer = NewTransformer(nil)
	}
	return &Orchestrator{
		countries:   countries,
		rates:       rates,
		store:       store,
		summary:     summary,
		transformer: transformer,
		clock:       clock,
		cfg:         cfg,
	}
}

// Run performs one refresh. Source failures come back as ErrSourceUnavailable
// with nothing written; any fault after the transaction opens rolls everything
// back and comes back as ErrStorage.
func (o *Orchestrator) Run(ctx context.Context, batchSize int) (domain.RefreshSummary, error) {
	runID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"run_id": runID, "base": o.cfg.BaseCurrency})
	started := o.clock.Now()

	// STEP 1: fetching, nothing is written if either source fails
	raw, err := o.countries.FetchCountries(ctx)
	if err != nil {
		return domain.RefreshSummary{}, sourceError(err)
	}
	rates, err := o.rates.FetchExchangeRates(ctx, o.cfg.BaseCurrency)
	if err != nil {
		return domain.RefreshSummary{}, sourceError(err)
	}
	log.Infof("Fetched %d countries and %d rates", len(raw), len(rates))

	// STEP 2: transform and batch everything inside one transaction
	tx, err := o.store.BeginRefresh(ctx)
	if err != nil {
		return domain.RefreshSummary{}, fmt.Errorf("%w: begin refresh: %w", domain.ErrStorage, err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			log.WithError(rbErr).Error("Refresh rollback failed")
		}
	}()

	refreshedAt := o.clock.Now().UTC()
	batch := NewBatchUpserter(batchSize)
	var summary domain.RefreshSummary

	for _, rc := range raw {
		if err = ctx.Err(); err != nil {
			return domain.RefreshSummary{}, fmt.Errorf("%w: refresh cancelled: %w", domain.ErrStorage, err)
		}

		rec, successful, tErr := o.transformer.Transform(rc, rates, refreshedAt)
		if tErr != nil {
			log.WithError(tErr).WithField("country", rc.Name).Warn("Skipping country")
			summary.Skipped++
			continue
		}

		if err = batch.Append(ctx, tx, rec); err != nil {
			return domain.RefreshSummary{}, fmt.Errorf("%w: upsert batch: %w", domain.ErrStorage, err)
		}
		summary.Processed++
		if successful {
			summary.Successful++
		}
	}

	// STEP 3: remainder, metadata and commit
	if err = batch.Flush(ctx, tx); err != nil {
		return domain.RefreshSummary{}, fmt.Errorf("%w: upsert batch: %w", domain.ErrStorage, err)
	}
	if err = tx.UpdateMetadata(ctx, summary.Processed, refreshedAt); err != nil {
		return domain.RefreshSummary{}, fmt.Errorf("%w: update metadata: %w", domain.ErrStorage, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.RefreshSummary{}, fmt.Errorf("%w: commit: %w", domain.ErrStorage, err)
	}
	committed = true

	summary.Failed = summary.Processed - summary.Successful
	log.WithFields(logrus.Fields{
		"processed":  summary.Processed,
		"successful": summary.Successful,
		"failed":     summary.Failed,
		"skipped":    summary.Skipped,
		"batches":    batch.Writes(),
		"took":       o.clock.Since(started).String(),
	}).Info("✅ Refresh committed")

	// STEP 4: best-effort summary artifact, detached from the caller's context
	o.generateSummary(context.WithoutCancel(ctx), log)

	return summary, nil
}

// Wait blocks until every detached summary task has finished.
func (o *Orchestrator) Wait() { o.pending.Wait() }

func (o *Orchestrator) generateSummary(ctx context.Context, log *logrus.Entry) {
	if o.summary == nil {
		return
	}
	o.pending.Add(1)
	go func() {
		defer o.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
		defer cancel()

		if err := o.buildSummary(ctx); err != nil {
			log.WithError(err).Warn("Refresh summary was not generated")
		}
	}()
}

func (o *Orchestrator) buildSummary(ctx context.Context) error {
	meta, err := o.store.GetMetadata(ctx)
	if err != nil {
		return fmt.Errorf("%w: read metadata: %w", ErrSummary, err)
	}
	top, err := o.store.TopByGDP(ctx, o.cfg.TopN)
	if err != nil {
		return fmt.Errorf("%w: top countries: %w", ErrSummary, err)
	}
	report := domain.SummaryReport{
		TotalCountries:  meta.TotalCountries,
		TopCountries:    top,
		LastRefreshedAt: meta.LastRefreshedAt,
	}
	if err = o.summary.Generate(ctx, report); err != nil {
		return fmt.Errorf("%w: %w", ErrSummary, err)
	}
	return nil
}

func sourceError(err error) error {
	if errors.Is(err, domain.ErrSourceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
}
