package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/adshao/go-binance/v2"
)

// AssetQuote is the base asset and quote asset of a pair.
type AssetQuote struct {
	Quote string `json:"quote"`
	Asset string `json:"asset"`
}

// knownQuotes are tried longest first when a pair is missing from the pair list.
var knownQuotes = []string{
	"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "USDP", "DAI",
	"BTC", "ETH", "BNB", "EUR", "BRL", "TRY", "GBP", "AUD", "JPY", "USD",
}

func init() {
	sort.SliceStable(knownQuotes, func(i, j int) bool {
		return len(knownQuotes[i]) > len(knownQuotes[j])
	})
}

// PairService maps pair symbols to their asset and quote.
type PairService struct {
	mu    sync.RWMutex
	pairs map[string]AssetQuote
}

var defaultPairs = NewPairService()

// DefaultPairs is the pair list consulted by SplitAssetQuote.
func DefaultPairs() *PairService {
	return defaultPairs
}

// NewPairService creates an empty pair registry
func NewPairService() *PairService {
	return &PairService{pairs: make(map[string]AssetQuote)}
}

// Set registers the asset and quote of pair
func (s *PairService) Set(pair, asset, quote string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[strings.ToUpper(pair)] = AssetQuote{Asset: strings.ToUpper(asset), Quote: strings.ToUpper(quote)}
}

// Get returns the asset and quote of pair
func (s *PairService) Get(pair string) (AssetQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.pairs[strings.ToUpper(pair)]
	return data, ok
}

// Len returns the number of known pairs
func (s *PairService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pairs)
}

// Split resolves a pair from the list and falls back to matching a known quote suffix.
// Unknown pairs return empty strings.
func (s *PairService) Split(pair string) (asset, quote string) {
	if data, ok := s.Get(pair); ok {
		return data.Asset, data.Quote
	}

	pair = strings.ToUpper(pair)
	for _, q := range knownQuotes {
		if len(pair) > len(q) && strings.HasSuffix(pair, q) {
			return strings.TrimSuffix(pair, q), q
		}
	}
	return "", ""
}

// Load merges the pairs found in a JSON file written by Save.
func (s *PairService) Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pairs: %w", err)
	}

	pairs := make(map[string]AssetQuote)
	if err := json.Unmarshal(content, &pairs); err != nil {
		return fmt.Errorf("decode pairs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for pair, data := range pairs {
		s.pairs[strings.ToUpper(pair)] = data
	}
	return nil
}

// Save writes the registry to path as JSON
func (s *PairService) Save(path string) error {
	s.mu.RLock()
	content, err := json.MarshalIndent(s.pairs, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode pairs: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write pairs: %w", err)
	}
	return nil
}

// Update replaces the list with the spot symbols reported by Binance.
func (s *PairService) Update(ctx context.Context, client *binance.Client) error {
	info, err := client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return fmt.Errorf("binance exchange info: %w", err)
	}

	pairs := make(map[string]AssetQuote, len(info.Symbols))
	for _, symbol := range info.Symbols {
		pairs[symbol.Symbol] = AssetQuote{Asset: symbol.BaseAsset, Quote: symbol.QuoteAsset}
	}

	s.mu.Lock()
	s.pairs = pairs
	s.mu.Unlock()
	return nil
}

// SplitAssetQuote splits a pair such as BTCUSDT into BTC and USDT.
func SplitAssetQuote(pair string) (asset, quote string) {
	return defaultPairs.Split(pair)
}

// UpdateAndSavePairs refreshes the default list from Binance and writes it to path.
func UpdateAndSavePairs(ctx context.Context, path string) (int, error) {
	if err := defaultPairs.Update(ctx, binance.NewClient("", "")); err != nil {
		return 0, err
	}
	return defaultPairs.Len(), defaultPairs.Save(path)
}
