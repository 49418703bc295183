package controllers

import (
	"context"
	"fmt"

	"github.com/amaumene/gowatcharr/internal/metrics"
	"github.com/amaumene/gowatcharr/internal/models"
	"github.com/sirupsen/logrus"
)

// EnrichController is the bounded re-enrichment batch job. It repairs
// records that were never evaluated by the primary provider, at most once
// per record: once EnrichmentAttempted is set the record is never picked
// up again automatically.
type EnrichController struct {
	db        *models.Database
	metadata  MetadataProvider
	batchSize int
	logger    *logrus.Logger
}

// NewEnrichController creates a new re-enrichment controller
func NewEnrichController(db *models.Database, metadata MetadataProvider, batchSize int, logger *logrus.Logger) *EnrichController {
	return &EnrichController{
		db:        db,
		metadata:  metadata,
		batchSize: batchSize,
		logger:    logger,
	}
}

// BatchResult reports one re-enrichment batch
type BatchResult struct {
	Enriched     int    `json:"enriched"`
	Attempted    int    `json:"attempted"`
	Remaining    int    `json:"remaining"`
	TotalNeeding int    `json:"totalNeedingEnrichment"`
	Message      string `json:"message"`
}

// SampleItem identifies one record still awaiting enrichment
type SampleItem struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	ExternalID string `json:"externalId"`
}

// Status is the read-only view of the re-enrichment backlog
type Status struct {
	TotalNeeding     int          `json:"totalNeedingEnrichment"`
	MoviesMissing    int          `json:"moviesMissing"`
	ShowsMissing     int          `json:"showsMissing"`
	AlreadyAttempted int          `json:"alreadyAttempted"`
	Sample           []SampleItem `json:"sampleWithIds"`
}

const sampleLimit = 10

// eligible reports whether the batch job may touch a record: it must have
// a cross-provider id, no director yet, and no prior automatic attempt.
func eligible(item *models.LibraryItem) bool {
	return item.HasIMDBID() && item.Director == "" && !item.EnrichmentAttempted
}

// RunBatch processes one bounded batch. Provider failures are converted
// into "attempted, unresolved" per item; only a store-write failure aborts
// the batch.
func (c *EnrichController) RunBatch(ctx context.Context) (*BatchResult, error) {
	items, err := c.db.GetAllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	var pending []*models.LibraryItem
	for _, item := range items {
		if eligible(item) {
			pending = append(pending, item)
		}
	}

	batch := pending
	if len(batch) > c.batchSize {
		batch = batch[:c.batchSize]
	}

	result := &BatchResult{
		TotalNeeding: len(pending),
		Remaining:    len(pending) - len(batch),
	}

	if len(batch) == 0 {
		result.Message = "nothing to enrich"
		return result, nil
	}

	updated := make([]*models.LibraryItem, 0, len(batch))
	for _, item := range batch {
		meta, err := c.metadata.Lookup(ctx, item.ExternalID, item.MediaType)
		if err != nil || meta == nil || meta.Director == "" {
			// Mark the record as tried so it is never retried
			// automatically, even though it stays unresolved
			if err != nil {
				metrics.EnrichmentFailures.Inc()
				c.logger.WithError(err).WithField("title", item.Title).Warn("Re-enrichment attempt failed")
			}
			item.EnrichmentAttempted = true
			updated = append(updated, item)
			result.Attempted++
			continue
		}

		item.Director = meta.Director
		item.Actors = fallback(meta.Actors, item.Actors)
		item.Genre = fallback(meta.Genre, item.Genre)
		item.Plot = fallback(meta.Plot, item.Plot)
		item.Runtime = fallback(meta.Runtime, item.Runtime)
		item.PosterURL = fallback(meta.PosterURL, item.PosterURL)
		if meta.VoteAverage > 0 {
			score := meta.VoteAverage
			item.ScoreExternal = &score
		}
		item.EnrichmentAttempted = true
		updated = append(updated, item)
		result.Attempted++
		result.Enriched++
		metrics.ItemsEnriched.Inc()
	}

	if err := c.db.UpdateItems(updated); err != nil {
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	result.Message = fmt.Sprintf("enriched %d of %d attempted, %d remaining", result.Enriched, result.Attempted, result.Remaining)
	c.logger.WithFields(logrus.Fields{
		"enriched":  result.Enriched,
		"attempted": result.Attempted,
		"remaining": result.Remaining,
	}).Info("Re-enrichment batch completed")

	return result, nil
}

// Status reports the backlog without mutating anything. Clients loop on
// the batch endpoint until TotalNeeding reaches zero.
func (c *EnrichController) Status() (*Status, error) {
	items, err := c.db.GetAllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	status := &Status{Sample: []SampleItem{}}
	for _, item := range items {
		if item.Director != "" {
			continue
		}
		if item.EnrichmentAttempted {
			status.AlreadyAttempted++
			continue
		}
		if !item.HasIMDBID() {
			continue
		}

		status.TotalNeeding++
		switch item.MediaType {
		case models.MediaTypeMovie:
			status.MoviesMissing++
		case models.MediaTypeSeries:
			status.ShowsMissing++
		}
		if len(status.Sample) < sampleLimit {
			status.Sample = append(status.Sample, SampleItem{
				Title:      item.Title,
				Type:       string(item.MediaType),
				ExternalID: item.ExternalID,
			})
		}
	}

	return status, nil
}

// fallback keeps the existing value when the provider has nothing better
func fallback(value, existing string) string {
	if value == "" {
		return existing
	}
	return value
}
