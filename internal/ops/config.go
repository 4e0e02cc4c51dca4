package ops

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"

	"polotrader/internal/analytics"
	"polotrader/internal/model/enum"
)

// FileConfig mirrors the YAML config layout.
type FileConfig struct {
	Pairs     []PairConfig   `yaml:"pairs"`
	History   HistoryConfig  `yaml:"history"`
	Dispatch  DispatchConfig `yaml:"dispatch"`
	Poloniex  PoloniexConfig `yaml:"poloniex"`
	Journal   JournalConfig  `yaml:"journal"`
	Export    ExportConfig   `yaml:"export"`
	Profile   ProfileConfig  `yaml:"profile"`
	RealPrice bool           `yaml:"realPrice"`
}

// PairConfig binds one currency pair to its timeframe series.
type PairConfig struct {
	Name   string         `yaml:"name"`
	Series []SeriesConfig `yaml:"series"`
}

// SeriesConfig binds one timeframe to its strategies.
type SeriesConfig struct {
	TimeFrame  string           `yaml:"timeFrame"`
	Strategies []StrategyConfig `yaml:"strategies"`
}

// StrategyConfig describes one strategy entry.
type StrategyConfig struct {
	Name      string       `yaml:"name"`
	Signal    SignalConfig `yaml:"signal"`
	Direction string       `yaml:"direction"`
	Volume    string       `yaml:"volume"`
	Records   int          `yaml:"records"`
}

// SignalConfig describes a signal by type plus its parameters.
type SignalConfig struct {
	Type       string `yaml:"type"`
	EnterBelow string `yaml:"enterBelow"`
	ExitAbove  string `yaml:"exitAbove"`
}

type HistoryConfig struct {
	Hours int `yaml:"hours"`
}

type DispatchConfig struct {
	Workers int `yaml:"workers"`
	Queue   int `yaml:"queue"`
}

type PoloniexConfig struct {
	PublicURL  string `yaml:"publicURL"`
	TradingURL string `yaml:"tradingURL"`
	WsURL      string `yaml:"wsURL"`
}

type JournalConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Database string `yaml:"database"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type ProfileConfig struct {
	ServerAddress string `yaml:"serverAddress"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Pairs     []PairSpec
	History   HistoryConfig
	Dispatch  DispatchConfig
	Poloniex  PoloniexConfig
	Journal   JournalConfig
	Export    ExportConfig
	Profile   ProfileConfig
	RealPrice bool
}

// PairSpec is a resolved pair entry.
type PairSpec struct {
	Name   string
	Series []SeriesSpec
}

// SeriesSpec is a resolved timeframe entry.
type SeriesSpec struct {
	TimeFrame  enum.TimeFrame
	Strategies []StrategySpec
}

// StrategySpec is a resolved strategy definition.
type StrategySpec struct {
	Name      string
	Signal    analytics.Signal
	Direction enum.OrderSide
	Volume    decimal.Decimal
	Records   int
}

// Load reads a YAML config file and resolves every entry.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "unmarshal config")
	}

	return Resolve(cfg)
}

// Resolve validates a file config and converts it into runtime types.
func Resolve(cfg FileConfig) (Loaded, error) {
	if len(cfg.Pairs) == 0 {
		return Loaded{}, errors.New("config: no pairs")
	}

	loaded := Loaded{
		History:   cfg.History,
		Dispatch:  cfg.Dispatch,
		Poloniex:  cfg.Poloniex,
		Journal:   cfg.Journal,
		Export:    cfg.Export,
		Profile:   cfg.Profile,
		RealPrice: cfg.RealPrice,
	}

	if loaded.History.Hours <= 0 {
		loaded.History.Hours = 24
	}

	for _, pair := range cfg.Pairs {
		if pair.Name == "" {
			return Loaded{}, errors.New("config: pair without name")
		}

		spec := PairSpec{Name: pair.Name}
		for _, series := range pair.Series {
			seriesSpec, err := resolveSeries(series)
			if err != nil {
				return Loaded{}, errors.Wrap(err, "pair "+pair.Name)
			}
			spec.Series = append(spec.Series, seriesSpec)
		}
		if len(spec.Series) == 0 {
			return Loaded{}, errors.Errorf("config: pair %s without series", pair.Name)
		}

		loaded.Pairs = append(loaded.Pairs, spec)
	}

	return loaded, nil
}

func resolveSeries(cfg SeriesConfig) (SeriesSpec, error) {
	timeFrame, err := enum.ParseTimeFrame(cfg.TimeFrame)
	if err != nil {
		return SeriesSpec{}, err
	}

	spec := SeriesSpec{TimeFrame: timeFrame}
	for _, strategy := range cfg.Strategies {
		strategySpec, err := resolveStrategy(strategy)
		if err != nil {
			return SeriesSpec{}, errors.Wrap(err, "timeframe "+cfg.TimeFrame)
		}
		spec.Strategies = append(spec.Strategies, strategySpec)
	}

	return spec, nil
}

func resolveStrategy(cfg StrategyConfig) (StrategySpec, error) {
	if cfg.Name == "" {
		return StrategySpec{}, errors.New("config: strategy without name")
	}

	signal, err := resolveSignal(cfg.Signal)
	if err != nil {
		return StrategySpec{}, errors.Wrap(err, "strategy "+cfg.Name)
	}

	direction, err := enum.ParseOrderSide(cfg.Direction)
	if err != nil {
		return StrategySpec{}, errors.Wrap(err, "strategy "+cfg.Name)
	}

	volume, err := decimal.NewFromString(cfg.Volume)
	if err != nil {
		return StrategySpec{}, errors.Wrap(err, "strategy "+cfg.Name+" volume")
	}
	if !volume.IsPositive() {
		return StrategySpec{}, errors.Errorf("config: strategy %s volume must be positive", cfg.Name)
	}

	records := cfg.Records
	if records <= 0 {
		records = 1
	}

	return StrategySpec{
		Name:      cfg.Name,
		Signal:    signal,
		Direction: direction,
		Volume:    volume,
		Records:   records,
	}, nil
}

func resolveSignal(cfg SignalConfig) (analytics.Signal, error) {
	switch cfg.Type {
	case "threshold":
		enterBelow, err := decimal.NewFromString(cfg.EnterBelow)
		if err != nil {
			return nil, errors.Wrap(err, "signal enterBelow")
		}
		exitAbove, err := decimal.NewFromString(cfg.ExitAbove)
		if err != nil {
			return nil, errors.Wrap(err, "signal exitAbove")
		}
		return analytics.ThresholdSignal{EnterBelow: enterBelow, ExitAbove: exitAbove}, nil
	default:
		return nil, errors.Errorf("config: unknown signal type %q", cfg.Type)
	}
}

// Credentials are exchange and database secrets resolved from the
// environment, never from the config file.
type Credentials struct {
	APIKey     string
	APISecret  string
	JournalPwd string
}

// LoadCredentials reads secrets from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		APIKey:     os.Getenv("POLONIEX_API_KEY"),
		APISecret:  os.Getenv("POLONIEX_API_SECRET"),
		JournalPwd: os.Getenv("JOURNAL_PASSWORD"),
	}
}
