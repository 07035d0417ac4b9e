// Package universe selects the tickers worth scanning: midcap names with
// listed options, excluding the mega caps whose term structure is already
// heavily arbitraged.
package universe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// largeCapExclusions combines the Dow 30, the biggest S&P 100 components and
// a few other mega caps. These names are excluded from midcap scanning.
var largeCapExclusions = map[string]bool{}

func init() {
	for _, t := range []string{
		// Dow 30
		"AAPL", "MSFT", "UNH", "GS", "HD", "AMGN", "MCD", "CAT", "CRM", "V",
		"AXP", "BA", "TRV", "JPM", "IBM", "WMT", "JNJ", "PG", "CVX", "NKE",
		"MRK", "DIS", "KO", "WBA", "CSCO", "VZ", "INTC", "DOW", "HON", "MMM",
		// Largest S&P 100 components
		"GOOGL", "GOOG", "AMZN", "NVDA", "TSLA", "META", "BRK.B", "XOM",
		"MA", "PFE", "ABBV", "BAC", "AVGO", "PEP", "TMO", "COST", "WFC",
		"ABT", "ACN", "LIN", "ADBE", "DHR", "TXN", "NEE", "NFLX", "COP",
		"RTX", "ORCL", "CMCSA", "QCOM", "UPS", "SPGI",
		// Other mega caps
		"TSMC", "ASML", "LLY", "NOVO", "TM", "NVO", "TSM",
	} {
		largeCapExclusions[t] = true
	}
}

// Patterns that mark index products and funds rather than single equities.
var nonEquityPatterns = []string{"SPXW", "QQQ", "SPY", "IWM", "ETF", "FUND"}

const (
	whitelistFile = "midcap_whitelist.json"
	blacklistFile = "manual_blacklist.json"
)

// Filter decides which tickers belong to the scan universe. The built-in
// large-cap exclusions always apply; an optional whitelist restricts the
// universe further and a manual blacklist removes individual names.
type Filter struct {
	configDir string
	whitelist map[string]bool
	blacklist map[string]bool
}

// Stats summarizes the filter configuration.
type Stats struct {
	LargeCapExclusions int `json:"large_cap_exclusions"`
	WhitelistSize      int `json:"midcap_whitelist_size"`
	BlacklistSize      int `json:"manual_blacklist_size"`
	SuggestedSize      int `json:"suggested_universe_size"`
}

// NewFilter builds a filter, loading the optional whitelist and blacklist
// from JSON files in configDir. Missing or malformed list files are treated
// as empty.
func NewFilter(configDir string) *Filter {
	return &Filter{
		configDir: configDir,
		whitelist: loadTickerList(filepath.Join(configDir, whitelistFile)),
		blacklist: loadTickerList(filepath.Join(configDir, blacklistFile)),
	}
}

// tickerListFile is the on-disk shape of a whitelist/blacklist file. A bare
// JSON array of strings is accepted too.
type tickerListFile struct {
	Tickers []string `json:"tickers"`
}

func loadTickerList(path string) map[string]bool {
	set := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return set
	}

	var file tickerListFile
	if err := json.Unmarshal(data, &file); err == nil && len(file.Tickers) > 0 {
		for _, t := range file.Tickers {
			set[normalize(t)] = true
		}
		return set
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		for _, t := range list {
			set[normalize(t)] = true
		}
	}
	return set
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// IsCandidate reports whether a ticker belongs in the scan universe.
func (f *Filter) IsCandidate(ticker string) bool {
	ticker = normalize(ticker)

	if largeCapExclusions[ticker] {
		return false
	}
	if f.blacklist[ticker] {
		return false
	}
	if len(f.whitelist) > 0 && !f.whitelist[ticker] {
		return false
	}
	return validSymbol(ticker)
}

// validSymbol applies basic equity-symbol sanity checks.
func validSymbol(ticker string) bool {
	if ticker == "" || len(ticker) > 5 {
		return false
	}

	stripped := strings.NewReplacer(".", "", "-", "").Replace(ticker)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		isLetter := r >= 'A' && r <= 'Z'
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !isDigit {
			return false
		}
	}

	for _, pattern := range nonEquityPatterns {
		if strings.Contains(ticker, pattern) {
			return false
		}
	}
	return true
}

// FilterTickers keeps only the candidates from a ticker list, preserving
// order.
func (f *Filter) FilterTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if f.IsCandidate(t) {
			out = append(out, normalize(t))
		}
	}
	return out
}

// Suggested returns the curated midcap universe, already run through the
// filter so blacklist and whitelist edits apply.
func (f *Filter) Suggested() []string {
	return f.FilterTickers(suggestedMidcaps())
}

// AddToWhitelist adds tickers to the whitelist in memory.
func (f *Filter) AddToWhitelist(tickers []string) {
	for _, t := range tickers {
		f.whitelist[normalize(t)] = true
	}
}

// AddToBlacklist adds tickers to the manual blacklist in memory.
func (f *Filter) AddToBlacklist(tickers []string) {
	for _, t := range tickers {
		f.blacklist[normalize(t)] = true
	}
}

// Save persists the whitelist and blacklist to configDir. Empty lists are
// not written.
func (f *Filter) Save() error {
	if err := saveTickerList(filepath.Join(f.configDir, whitelistFile), f.whitelist); err != nil {
		return err
	}
	return saveTickerList(filepath.Join(f.configDir, blacklistFile), f.blacklist)
}

func saveTickerList(path string, set map[string]bool) error {
	if len(set) == 0 {
		return nil
	}

	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	data, err := json.MarshalIndent(tickerListFile{Tickers: tickers}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Stats reports filter configuration sizes.
func (f *Filter) Stats() Stats {
	return Stats{
		LargeCapExclusions: len(largeCapExclusions),
		WhitelistSize:      len(f.whitelist),
		BlacklistSize:      len(f.blacklist),
		SuggestedSize:      len(f.Suggested()),
	}
}

// suggestedMidcaps is the curated starting universe across sectors. Names
// drift in and out of the midcap band over time; the filter prunes any that
// have since joined the exclusion list.
func suggestedMidcaps() []string {
	return []string{
		// Technology
		"TEAM", "OKTA", "ZS", "CRWD", "NET", "DDOG", "SNOW", "PATH", "ESTC", "DOCU",
		"TWLO", "ZM", "PINS", "SNAP", "UBER", "LYFT", "RBLX", "U", "PLTR", "COIN",
		// Healthcare
		"MRNA", "REGN", "BIIB", "ILMN", "VRTX", "ALNY", "BMRN", "SGEN", "TECH", "EXAS",
		"TDOC", "VEEV", "ZBH", "ALGN", "DXCM", "ISRG", "HOLX", "IDXX", "IQV", "MTD",
		// Financials
		"SCHW", "MS", "BLK", "GS", "CB", "AIG", "TFC", "USB", "PNC", "COF",
		"FITB", "HBAN", "RF", "CFG", "MTB", "KEY", "SIVB", "ZION", "CMA", "NTRS",
		// Industrials
		"FDX", "UPS", "NSC", "CSX", "UNP", "ODFL", "CHRW", "EXPD", "JBHT", "SAIA",
		"FAST", "ITW", "ETN", "EMR", "ROK", "PH", "CMI", "IR", "OTIS", "CARR",
		// Consumer
		"SBUX", "MCD", "CMG", "QSR", "DPZ", "YUM", "EAT", "TXRH", "WING", "SHAK",
		"LULU", "NKE", "DECK", "CROX", "SKX", "UAA", "RL", "PVH", "TPG", "GOOS",
		// Energy
		"EOG", "PXD", "COP", "SLB", "HAL", "BKR", "OXY", "DVN", "FANG", "MRO",
		"APA", "CVE", "CNQ", "SU", "TTE", "BP", "RDS.A", "E", "SHEL", "ENB",
		// Materials
		"FCX", "NEM", "GOLD", "AEM", "KGC", "AU", "EGO", "AGI", "CDE", "HL",
		"CLF", "X", "MT", "VALE", "RIO", "SCCO", "TXG", "AA", "CENX", "KALU",
		// Real estate
		"AMT", "CCI", "EQIX", "DLR", "PSA", "EXR", "AVB", "EQR", "UDR", "CPT",
		"MAA", "AIV", "ESS", "BXP", "VTR", "WELL", "HCP", "PEAK", "MPW", "OHI",
	}
}
