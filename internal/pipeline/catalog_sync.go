// Package pipeline contains the background jobs that keep the local
// catalog in sync with the upstream venues.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/service"
)

// CatalogSync refreshes the question catalog, re-runs the cross-venue
// matcher, and archives a JSON snapshot of each run to blob storage.
type CatalogSync struct {
	markets  *service.MarketService
	matcher  *service.MatchService // may be nil
	archive  domain.BlobWriter     // may be nil
	interval time.Duration
	logger   *slog.Logger
}

// NewCatalogSync creates a CatalogSync. Matcher and archive are optional
// stages; a nil value skips that stage.
func NewCatalogSync(markets *service.MarketService, matcher *service.MatchService, archive domain.BlobWriter, interval time.Duration, logger *slog.Logger) *CatalogSync {
	return &CatalogSync{
		markets:  markets,
		matcher:  matcher,
		archive:  archive,
		interval: interval,
		logger:   logger.With(slog.String("component", "catalog_sync")),
	}
}

// snapshot is the archived record of one sync run.
type snapshot struct {
	RunID     string               `json:"run_id"`
	SyncedAt  time.Time            `json:"synced_at"`
	Questions []domain.Market      `json:"questions"`
	Matches   []domain.MarketMatch `json:"matches,omitempty"`
}

// Run executes one full sync pass and returns the run ID.
func (cs *CatalogSync) Run(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	started := time.Now().UTC()

	questions, err := cs.markets.Refresh(ctx)
	if err != nil {
		return runID, fmt.Errorf("pipeline: catalog sync %s: %w", runID, err)
	}

	var matches []domain.MarketMatch
	if cs.matcher != nil {
		matches, err = cs.matcher.Run(ctx)
		if err != nil {
			// Matching is best-effort: a venue outage must not block the
			// catalog refresh itself.
			cs.logger.WarnContext(ctx, "match stage failed",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	if cs.archive != nil {
		if err := cs.archiveRun(ctx, runID, started, questions, matches); err != nil {
			cs.logger.WarnContext(ctx, "archive stage failed",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	cs.logger.InfoContext(ctx, "catalog sync complete",
		slog.String("run_id", runID),
		slog.Int("questions", len(questions)),
		slog.Int("matches", len(matches)),
		slog.Duration("took", time.Since(started)),
	)

	return runID, nil
}

// RunLoop runs sync passes at the configured interval until the context
// is cancelled. The first pass runs immediately.
func (cs *CatalogSync) RunLoop(ctx context.Context) error {
	if _, err := cs.Run(ctx); err != nil {
		cs.logger.ErrorContext(ctx, "catalog sync failed",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := cs.Run(ctx); err != nil {
				cs.logger.ErrorContext(ctx, "catalog sync failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (cs *CatalogSync) archiveRun(ctx context.Context, runID string, at time.Time, questions []domain.Market, matches []domain.MarketMatch) error {
	snap := snapshot{
		RunID:     runID,
		SyncedAt:  at,
		Questions: questions,
		Matches:   matches,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshal snapshot: %w", err)
	}

	path := fmt.Sprintf("catalog/%s/%s.json", at.Format("2006-01-02"), runID)
	if err := cs.archive.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("pipeline: upload snapshot: %w", err)
	}

	cs.logger.InfoContext(ctx, "snapshot archived",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)
	return nil
}
