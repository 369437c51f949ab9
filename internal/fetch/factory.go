package fetch

import "fmt"

// SourceConfig is one indicator's entry in the sources configuration.
type SourceConfig struct {
	Primary    string `yaml:"primary"`
	Backup     string `yaml:"backup"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// baseSource carries the fields shared by every indicator source.
type baseSource struct {
	name    string
	primary string
	backup  string
}

func (s baseSource) Name() string       { return s.name }
func (s baseSource) PrimaryURL() string { return s.primary }

// HistoryURL defaults to the primary endpoint; sources with a range
// parameter override it.
func (s baseSource) HistoryURL(int) string { return s.primary }

// NewSource creates the indicator-specific source for a metric name.
func NewSource(metric string, cfg SourceConfig) (Source, error) {
	base := baseSource{name: metric, primary: cfg.Primary, backup: cfg.Backup}

	switch metric {
	case "fear_greed_index":
		return &FearGreedSource{baseSource: base}, nil
	case "hash_rate":
		return &HashRateSource{baseSource: base}, nil
	case "exchange_net_flows":
		return &NetFlowsSource{baseSource: base}, nil
	case "active_addresses":
		return &ActiveAddressSource{baseSource: base}, nil
	case "perpetual_funding_rates":
		return &FundingRateSource{baseSource: base}, nil
	case "open_interest":
		return &OpenInterestSource{baseSource: base}, nil
	case "mvrv_ratio":
		return &MVRVSource{baseSource: base}, nil
	case "price_data":
		return &RSISource{baseSource: base}, nil
	default:
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}
}
