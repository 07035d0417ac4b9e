// Package integration provides end-to-end tests for the scan pipeline.
package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ff-scanner/internal/analysis/vol"
	"ff-scanner/internal/config"
	"ff-scanner/internal/models"
	"ff-scanner/internal/report"
	"ff-scanner/internal/scan"
	"ff-scanner/internal/store"
)

// pricedContract quotes one contract at a flat Black-Scholes volatility with
// a tight, liquid market around the theoretical price.
func pricedContract(ticker string, strike float64, typ models.OptionType, spot, sigma float64, dte int) models.Contract {
	price := vol.Price(spot, strike, vol.DaysToYears(dte), vol.DefaultRiskFreeRate, sigma, typ)
	return models.Contract{
		Ticker:  ticker,
		Strike:  strike,
		Type:    typ,
		Bid:     price - 0.05,
		Ask:     price + 0.05,
		Last:    price,
		Volume:  200,
		OpenInt: 600,
	}
}

func pricedChain(t *testing.T, ticker string, dte int, spot, sigma float64) *models.Chain {
	t.Helper()
	var contracts []models.Contract
	for _, strike := range []float64{spot, spot * 1.025, spot * 1.05} {
		contracts = append(contracts,
			pricedContract(ticker, strike, models.Call, spot, sigma, dte),
			pricedContract(ticker, strike, models.Put, spot, sigma, dte))
	}
	chain, err := models.NewChain(ticker, "2026-09-26", dte, spot, contracts)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	return chain
}

// TestScanPipeline runs the full flow: synthetic chains in, ranked
// opportunities out, results persisted to CSV and the history store.
func TestScanPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Signal.MinConfidence = 0
	scanner := scan.NewScanner(cfg, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// STEEP carries an inverted term structure (front 40 vol against 30
	// next term); FLAT has none.
	inputs := []scan.TickerChains{
		{Ticker: "STEEP", Chains: []*models.Chain{
			pricedChain(t, "STEEP", 32, 100, 0.40),
			pricedChain(t, "STEEP", 58, 100, 0.30),
		}},
		{Ticker: "FLAT", Chains: []*models.Chain{
			pricedChain(t, "FLAT", 32, 50, 0.30),
			pricedChain(t, "FLAT", 58, 50, 0.30),
		}},
	}

	result := scanner.Scan(ctx, inputs)
	if result.Tickers != 2 {
		t.Fatalf("Tickers = %d, want 2", result.Tickers)
	}
	if result.Evaluated == 0 {
		t.Fatal("nothing evaluated")
	}
	if len(result.Opportunities) == 0 {
		t.Fatal("no opportunities returned")
	}

	best := result.Opportunities[0]
	if best.Ticker != "STEEP" {
		t.Errorf("best ticker = %s, want STEEP", best.Ticker)
	}
	if best.Type != scan.Bullish {
		t.Errorf("best type = %s, want bullish", best.Type)
	}
	if !best.IsValid || best.Confidence <= 0 {
		t.Errorf("best opportunity not valid: valid=%v confidence=%v", best.IsValid, best.Confidence)
	}
	if best.FF == nil || best.FF.ForwardFactorPct < 5 {
		t.Errorf("FF = %+v, want strongly positive", best.FF)
	}

	summaries := make([]models.OpportunitySummary, 0, len(result.Opportunities))
	for _, opp := range result.Opportunities {
		summaries = append(summaries, opp.Summary())
	}

	// CSV round-trip
	writer := report.NewWriter(t.TempDir(), false)
	csvPath, err := writer.WriteCSV(summaries)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := report.ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != len(summaries) {
		t.Fatalf("CSV rows = %d, want %d", len(rows), len(summaries))
	}
	if rows[0].Ticker != "STEEP" {
		t.Errorf("CSV row 0 ticker = %s, want STEEP", rows[0].Ticker)
	}

	// History store round-trip
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "scans.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	scanID, err := st.SaveScan(ctx, store.ScanRecord{
		StartedAt: time.Now().UTC(),
		Duration:  result.Duration,
		Tickers:   result.Tickers,
	}, summaries)
	if err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	stored, err := st.ScanOpportunities(ctx, scanID)
	if err != nil {
		t.Fatalf("ScanOpportunities: %v", err)
	}
	if len(stored) != len(summaries) {
		t.Fatalf("stored %d opportunities, want %d", len(stored), len(summaries))
	}
	if stored[0].Ticker != "STEEP" {
		t.Errorf("stored row 0 ticker = %s, want STEEP", stored[0].Ticker)
	}
}
