package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Forward Factor Scanner Configuration

[scanning]
# Maximum number of tickers evaluated per scan
max_tickers = 50
# Worker goroutines for per-ticker analysis
workers = 4

[liquidity]
# Minimum contract volume
min_volume = 50
# Minimum open interest
min_open_interest = 100
# Maximum bid/ask spread as a percentage of the mid price
max_bid_ask_spread_pct = 10.0
# Minimum bid price (avoids penny options)
min_bid = 0.05
# Minimum ask price
min_ask = 0.10
# Maximum absolute bid/ask spread in dollars
max_bid_ask_spread_abs = 2.0
# Minimum mid price
min_mid_price = 0.10
# Minimum volume / open-interest ratio (recent activity)
min_volume_oi_ratio = 0.1
# Chains outside this DTE window are skipped entirely
max_days_to_expiration = 90
min_days_to_expiration = 7

[forward_factor]
# FF%% above this is classified bullish
bullish_threshold = 5.0
# FF%% below this is classified bearish
bearish_threshold = -5.0
# Opportunities under this confidence are dropped from rankings
min_confidence = 30.0
# Cap on ranked opportunities returned
max_opportunities = 20

[output]
# Save CSV summary per scan
save_csv = true
# Save detailed JSON per scan
save_json = true
# Record scans in the local SQLite history
save_db = true
# Directory for CSV/JSON results
results_directory = "results"
# Timestamp result filenames
timestamp_files = true

[logging]
# Log level: debug, info, warn, error
level = "info"
console_logging = true
file_logging = true
`

// createTemplateConfig writes the default config.toml template.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
