// Package store provides scan-history persistence.
package store

import (
	"context"
	"time"

	"ff-scanner/internal/models"
)

// ScanRecord is one completed scan run.
type ScanRecord struct {
	ID            int64         `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Tickers       int           `json:"tickers_scanned"`
	Opportunities int           `json:"opportunities_found"`
}

// ResultStore defines the interface for persisting scan results.
type ResultStore interface {
	// SaveScan records a completed scan and its ranked opportunities,
	// returning the scan's ID.
	SaveScan(ctx context.Context, record ScanRecord, opportunities []models.OpportunitySummary) (int64, error)

	// RecentScans lists the most recent scan records, newest first.
	RecentScans(ctx context.Context, limit int) ([]ScanRecord, error)

	// ScanOpportunities returns the opportunities saved for one scan,
	// best-confidence first.
	ScanOpportunities(ctx context.Context, scanID int64) ([]models.OpportunitySummary, error)

	// TickerHistory returns the most recent opportunities recorded for a
	// ticker across scans, newest scan first.
	TickerHistory(ctx context.Context, ticker string, limit int) ([]models.OpportunitySummary, error)

	Close() error
}
