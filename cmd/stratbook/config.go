package main

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/joho/godotenv"
	"github.com/raykavin/stratbook/pkg/core"
	"github.com/raykavin/stratbook/pkg/exchange"
	"github.com/raykavin/stratbook/pkg/storage"
	"github.com/raykavin/stratbook/pkg/strategy"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName   = "stratbook"
	envPrefix    = "STRATBOOK"
	sqlitePrefix = "sqlite:"
)

// Config is the merged view of stratbook.yaml, STRATBOOK_* variables and flags.
type Config struct {
	LogLevel      string   `mapstructure:"log_level"`
	Pairs         []string `mapstructure:"pairs"`
	Data          []string `mapstructure:"data"`
	DataTimeframe string   `mapstructure:"data_timeframe"`
	Storage       string   `mapstructure:"storage"`
	Returns       string   `mapstructure:"returns"`

	Wallet    WalletConfig    `mapstructure:"wallet"`
	Strategy  StrategyConfig  `mapstructure:"strategy"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Mail      MailConfig      `mapstructure:"mail"`
}

type WalletConfig struct {
	Asset    string  `mapstructure:"asset"`
	Balance  float64 `mapstructure:"balance"`
	MakerFee float64 `mapstructure:"maker_fee"`
	TakerFee float64 `mapstructure:"taker_fee"`
}

type StrategyConfig struct {
	Name   string         `mapstructure:"name"`
	Params map[string]any `mapstructure:"params"`
}

type OptimizerConfig struct {
	Method      string   `mapstructure:"method"`
	Iterations  int      `mapstructure:"iterations"`
	Parallelism int      `mapstructure:"parallelism"`
	Metric      string   `mapstructure:"metric"`
	Minimize    bool     `mapstructure:"minimize"`
	Top         int      `mapstructure:"top"`
	Seed        int64    `mapstructure:"seed"`
	Search      []string `mapstructure:"search"`
	Output      string   `mapstructure:"output"`
}

type BinanceConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	TestNet    bool   `mapstructure:"testnet"`
	HeikinAshi bool   `mapstructure:"heikin_ashi"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	Users   []int  `mapstructure:"users"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Password string `mapstructure:"password"`
}

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"pair":           "pairs",
	"data":           "data",
	"data-timeframe": "data_timeframe",
	"storage":        "storage",
	"returns":        "returns",
	"asset":          "wallet.asset",
	"balance":        "wallet.balance",
	"maker-fee":      "wallet.maker_fee",
	"taker-fee":      "wallet.taker_fee",
	"strategy":       "strategy.name",
	"method":         "optimizer.method",
	"iterations":     "optimizer.iterations",
	"parallelism":    "optimizer.parallelism",
	"metric":         "optimizer.metric",
	"minimize":       "optimizer.minimize",
	"top":            "optimizer.top",
	"seed":           "optimizer.seed",
	"search":         "optimizer.search",
	"output":         "optimizer.output",
	"testnet":        "binance.testnet",
	"heikin-ashi":    "binance.heikin_ashi",
	"telegram":       "telegram.enabled",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("pairs", []string{"BTCUSDT"})
	v.SetDefault("data", []string{})
	v.SetDefault("data_timeframe", "")
	v.SetDefault("storage", "")
	v.SetDefault("returns", "")

	v.SetDefault("wallet.asset", "USDT")
	v.SetDefault("wallet.balance", 10000.0)
	v.SetDefault("wallet.maker_fee", 0.001)
	v.SetDefault("wallet.taker_fee", 0.001)

	v.SetDefault("strategy.name", "ema_cross")
	v.SetDefault("strategy.params", map[string]any{})

	v.SetDefault("optimizer.method", "grid")
	v.SetDefault("optimizer.iterations", 100)
	v.SetDefault("optimizer.parallelism", 4)
	v.SetDefault("optimizer.metric", string(core.MetricProfit))
	v.SetDefault("optimizer.minimize", false)
	v.SetDefault("optimizer.top", 5)
	v.SetDefault("optimizer.seed", 0)
	v.SetDefault("optimizer.search", []string{})
	v.SetDefault("optimizer.output", "")

	v.SetDefault("binance.api_key", "")
	v.SetDefault("binance.api_secret", "")
	v.SetDefault("binance.testnet", false)
	v.SetDefault("binance.heikin_ashi", false)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.users", []int{})

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.server", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")
	v.SetDefault("mail.password", "")
}

// LoadConfig reads .env, then path (or ./stratbook.yaml when empty), the
// environment and finally the flags that were set on the command line.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Settings is the bot view of the config.
func (c Config) Settings() core.Settings {
	return core.Settings{
		Pairs: c.Pairs,
		Telegram: core.TelegramSettings{
			Enabled: c.Telegram.Enabled,
			Token:   c.Telegram.Token,
			Users:   c.Telegram.Users,
		},
	}
}

// StrategyParams merges the configured strategy.params with key=value
// assignments, the assignments winning.
func (c Config) StrategyParams(assignments []string) (core.ParameterSet, error) {
	params, err := cast.ToStringMapE(c.Strategy.Params)
	if err != nil {
		return nil, fmt.Errorf("strategy.params: %w", err)
	}

	overrides, err := strategy.ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}

	set := make(core.ParameterSet, len(params)+len(overrides))
	maps.Copy(set, params)
	maps.Copy(set, overrides)
	return set, nil
}

// Feeds turns the data entries (PAIR=file.csv) into CSV feeds recorded at
// timeframe. Without entries every configured pair is read from
// <pair>-<timeframe>.csv, the name download writes by default.
func (c Config) Feeds(timeframe string) ([]exchange.PairFeed, error) {
	if c.DataTimeframe != "" {
		timeframe = c.DataTimeframe
	}

	if len(c.Data) == 0 {
		feeds := make([]exchange.PairFeed, 0, len(c.Pairs))
		for _, pair := range c.Pairs {
			feeds = append(feeds, exchange.PairFeed{
				Pair:       strings.ToUpper(pair),
				File:       defaultDataFile(pair, timeframe),
				Timeframe:  timeframe,
				HeikinAshi: c.Binance.HeikinAshi,
			})
		}
		return feeds, nil
	}

	feeds := make([]exchange.PairFeed, 0, len(c.Data))
	for _, entry := range c.Data {
		pair, file, ok := strings.Cut(entry, "=")
		pair, file = strings.TrimSpace(pair), strings.TrimSpace(file)
		if !ok || pair == "" || file == "" {
			return nil, fmt.Errorf("data %q: expected PAIR=file.csv", entry)
		}
		feeds = append(feeds, exchange.PairFeed{
			Pair:       strings.ToUpper(pair),
			File:       file,
			Timeframe:  timeframe,
			HeikinAshi: c.Binance.HeikinAshi,
		})
	}
	return feeds, nil
}

func defaultDataFile(pair, timeframe string) string {
	return fmt.Sprintf("%s-%s.csv", strings.ToLower(pair), timeframe)
}

// OpenStorage opens the order storage described by location: empty for memory,
// sqlite:path for SQLite and any other value for a buntdb file.
func OpenStorage(location string) (core.OrderStorage, error) {
	switch {
	case location == "":
		return storage.FromMemory()
	case strings.HasPrefix(location, sqlitePrefix):
		return storage.FromSQLite(strings.TrimPrefix(location, sqlitePrefix))
	default:
		return storage.FromFile(location)
	}
}
