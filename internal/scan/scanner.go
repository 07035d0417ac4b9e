package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ff-scanner/internal/analysis/liquidity"
	"ff-scanner/internal/analysis/vol"
	"ff-scanner/internal/config"
	"ff-scanner/internal/logging"
	"ff-scanner/internal/models"
)

// TickerChains is one scan unit: an underlying with its already-retrieved
// chains. The scanner never performs I/O itself.
type TickerChains struct {
	Ticker string
	Chains []*models.Chain
}

// ScanResult is the outcome of a full scan.
type ScanResult struct {
	// Opportunities is the ranked list after validity, confidence and count
	// cuts.
	Opportunities []*Opportunity
	// Evaluated counts every opportunity produced, including those the
	// ranking discarded.
	Evaluated int
	Tickers   int
	Duration  time.Duration
}

// Scanner fans ticker analysis out over a bounded worker pool. Tickers are
// independent: no shared mutable state crosses between them, so workers need
// no locking beyond result collection.
type Scanner struct {
	cfg      *config.Config
	analyzer *Analyzer
	logger   zerolog.Logger
}

// NewScanner wires a scanner from configuration.
func NewScanner(cfg *config.Config, logger zerolog.Logger) *Scanner {
	filter := liquidity.NewFilter(ThresholdsFromConfig(cfg.Liquidity))
	return &Scanner{
		cfg:      cfg,
		analyzer: NewAnalyzer(filter, vol.DefaultRiskFreeRate, logger),
		logger:   logger,
	}
}

// Analyzer exposes the underlying analyzer, mainly for the single-pair CLI
// path.
func (s *Scanner) Analyzer() *Analyzer {
	return s.analyzer
}

// ThresholdsFromConfig maps loaded liquidity configuration onto filter
// thresholds.
func ThresholdsFromConfig(lc config.LiquidityConfig) liquidity.Thresholds {
	return liquidity.Thresholds{
		MinVolume:        lc.MinVolume,
		MinOpenInterest:  lc.MinOpenInterest,
		MaxSpreadPct:     lc.MaxSpreadPct,
		MinBid:           lc.MinBid,
		MinAsk:           lc.MinAsk,
		MaxSpreadAbs:     lc.MaxSpreadAbs,
		MinMidPrice:      lc.MinMidPrice,
		MinVolumeOIRatio: lc.MinVolumeOIRatio,
		MaxDTE:           lc.MaxDTE,
		MinDTE:           lc.MinDTE,
	}
}

// ScanTicker evaluates every timeframe for one underlying. A timeframe with
// no matching chain pair simply contributes nothing.
func (s *Scanner) ScanTicker(ctx context.Context, ticker string, chains []*models.Chain) []*Opportunity {
	return s.scanTicker(ctx, ticker, chains, s.cfg.Signal)
}

func (s *Scanner) scanTicker(ctx context.Context, ticker string, chains []*models.Chain, sig config.SignalConfig) []*Opportunity {
	// Prefer a logger carried on the context; direct callers fall back to
	// the scanner's own.
	base := logging.FromContext(ctx)
	if base.GetLevel() == zerolog.Disabled {
		base = s.logger
	}
	logger := logging.WithTicker(base, ticker)

	sorted := make([]*models.Chain, 0, len(chains))
	for _, ch := range chains {
		if ch == nil {
			continue
		}
		if ch.DTE < s.cfg.Liquidity.MinDTE {
			logging.LogChainSkipped(logger, ticker, ch.DTE, "below minimum DTE")
			continue
		}
		sorted = append(sorted, ch)
	}
	models.SortChainsByDTE(sorted)

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		for _, ch := range sorted {
			sum := s.analyzer.SummarizeChain(ch)
			logger.Debug().
				Int("dte", ch.DTE).
				Int("total", sum.TotalContracts).
				Int("liquid", sum.LiquidContracts).
				Float64("ratio", sum.LiquidityRatio).
				Float64("avg_score", sum.AvgScore).
				Int64("volume", ch.TotalVolume()).
				Msg("chain liquidity")
		}
	}

	if len(sorted) < 2 {
		logger.Warn().Int("chains", len(sorted)).Msg("not enough chains to form a term pair")
		return nil
	}

	var opportunities []*Opportunity
	for _, tf := range Timeframes() {
		select {
		case <-ctx.Done():
			return opportunities
		default:
		}

		tfLogger := logging.WithTimeframe(logger, tf.Name)

		near, next, ok := SelectPair(sorted, tf)
		if !ok {
			tfLogger.Debug().Msg("no conforming chain pair")
			continue
		}

		opp := s.analyzer.EvaluateOpportunity(near, next, tf.Name, sig)
		opportunities = append(opportunities, opp)

		if opp.IsValid && opp.FF != nil {
			logging.LogOpportunity(tfLogger, ticker, tf.Name, string(opp.Type),
				opp.FF.ForwardFactorPct, opp.Confidence)
		}
	}
	return opportunities
}

// Scan runs every ticker through the worker pool and returns the ranked
// result. One ticker's failure never aborts the rest of the scan.
func (s *Scanner) Scan(ctx context.Context, inputs []TickerChains) *ScanResult {
	return s.ScanWithSignal(ctx, inputs, s.cfg.Signal)
}

// ScanWithSignal runs a scan with per-run signal thresholds, leaving the
// loaded configuration untouched.
func (s *Scanner) ScanWithSignal(ctx context.Context, inputs []TickerChains, sig config.SignalConfig) *ScanResult {
	start := time.Now()
	ctx = logging.WithLogger(ctx, s.logger)

	workers := s.cfg.Scanning.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(inputs) && len(inputs) > 0 {
		workers = len(inputs)
	}

	jobs := make(chan TickerChains)
	results := make(chan []*Opportunity)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- s.scanTicker(ctx, job.Ticker, job.Chains, sig)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, input := range inputs {
			select {
			case <-ctx.Done():
				return
			case jobs <- input:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []*Opportunity
	for batch := range results {
		all = append(all, batch...)
	}

	ranked := Rank(all, sig)

	result := &ScanResult{
		Opportunities: ranked,
		Evaluated:     len(all),
		Tickers:       len(inputs),
		Duration:      time.Since(start),
	}
	logging.LogScanComplete(s.logger, result.Tickers, len(ranked), result.Duration)
	return result
}

// Rank filters to valid opportunities at or above the confidence floor and
// orders them best-first. Confidence ties break on ticker then timeframe so
// output order is stable across runs.
func Rank(opportunities []*Opportunity, sig config.SignalConfig) []*Opportunity {
	ranked := make([]*Opportunity, 0, len(opportunities))
	for _, opp := range opportunities {
		if opp.IsValid && opp.Confidence >= sig.MinConfidence {
			ranked = append(ranked, opp)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		if ranked[i].Ticker != ranked[j].Ticker {
			return ranked[i].Ticker < ranked[j].Ticker
		}
		return ranked[i].Timeframe < ranked[j].Timeframe
	})

	if sig.MaxOpportunities > 0 && len(ranked) > sig.MaxOpportunities {
		ranked = ranked[:sig.MaxOpportunities]
	}
	return ranked
}
