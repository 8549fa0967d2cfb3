package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCoreWatchlist is scanned every cycle regardless of pre-market movers.
var DefaultCoreWatchlist = []string{
	"TSLA", "SPY", "QQQ", "NVDA", "AAPL", "AMD", "META", "AMZN", "MSFT", "GOOGL",
	"NFLX", "CRM", "AVGO", "SHOP", "COIN", "PLTR", "SOFI", "MARA", "ARM", "SMCI",
}

// DefaultScannerUniverse is the liquid symbol pool the pre-market scanner
// ranks for movers.
var DefaultScannerUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "BRK.B", "UNH",
	"JNJ", "JPM", "V", "PG", "XOM", "MA", "HD", "CVX", "MRK", "ABBV",
	"PEP", "KO", "COST", "AVGO", "WMT", "MCD", "CSCO", "ACN", "ABT", "TMO",
	"SPY", "QQQ", "IWM", "DIA", "VOO", "VTI", "ARKK", "XLF", "XLK", "XLE",
	"AMD", "INTC", "CRM", "ORCL", "ADBE", "NFLX", "PYPL", "UBER", "SHOP", "SQ",
}

// Config holds all application configuration.
type Config struct {
	Alpaca struct {
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		BaseURL    string `yaml:"base_url"`
		Paper      bool   `yaml:"paper"`
		Feed       string `yaml:"feed"`
		OptionFeed string `yaml:"option_feed"`
	} `yaml:"alpaca"`
	Watchlist struct {
		Core            []string `yaml:"core"`
		ScannerUniverse []string `yaml:"scanner_universe"`
		ScannerTopN     int      `yaml:"scanner_top_n"`
	} `yaml:"watchlist"`
	Strategy struct {
		RSIPeriod        int     `yaml:"rsi_period"`
		RSIOversold      float64 `yaml:"rsi_oversold"`
		RSIOverbought    float64 `yaml:"rsi_overbought"`
		MACDFast         int     `yaml:"macd_fast"`
		MACDSlow         int     `yaml:"macd_slow"`
		MACDSignal       int     `yaml:"macd_signal"`
		EMAFast          int     `yaml:"ema_fast"`
		EMASlow          int     `yaml:"ema_slow"`
		VolumeWindow     int     `yaml:"volume_window"`
		VolumeMultiplier float64 `yaml:"volume_multiplier"`
		SignalThreshold  int     `yaml:"signal_threshold"`
	} `yaml:"strategy"`
	Risk struct {
		MaxPositionPct   float64 `yaml:"max_position_pct"`
		MaxOpenPositions int     `yaml:"max_open_positions"`
		StopLossPct      float64 `yaml:"stop_loss_pct"`
		TakeProfitPct    float64 `yaml:"take_profit_pct"`
		MaxHoldDays      int     `yaml:"max_hold_days"`
	} `yaml:"risk"`
	Options struct {
		DTEMin          int     `yaml:"dte_min"`
		DTEMax          int     `yaml:"dte_max"`
		DeltaMin        float64 `yaml:"delta_min"`
		DeltaMax        float64 `yaml:"delta_max"`
		MinOpenInterest int64   `yaml:"min_open_interest"`
	} `yaml:"options"`
	Schedule struct {
		Timezone          string `yaml:"timezone"`
		PremarketCron     string `yaml:"premarket_cron"`
		OpenScanCron      string `yaml:"open_scan_cron"`
		RecurringScanCron string `yaml:"recurring_scan_cron"`
		TrackCron         string `yaml:"track_cron"`
		FridayCloseCron   string `yaml:"friday_close_cron"`
		SummaryCron       string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	LLM struct {
		Enabled    bool   `yaml:"enabled"`
		APIKey     string `yaml:"api_key"`
		Model      string `yaml:"model"`
		MaxTokens  int    `yaml:"max_tokens"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"llm"`
	Email struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		From        string `yaml:"from"`
		To          string `yaml:"to"`
		AppPassword string `yaml:"app_password"`
	} `yaml:"email"`
	Trading struct {
		PositionsFile      string `yaml:"positions_file"`
		OrderRetries       int    `yaml:"order_retries"`
		OrderRetryDelaySec int    `yaml:"order_retry_delay_sec"`
	} `yaml:"trading"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error: environment
// variables plus defaults form a complete configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Defaults a zero value cannot express.
	cfg.Alpaca.Paper = true
	cfg.LLM.Enabled = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("APCA_API_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("PAPER_TRADING"); v != "" {
		cfg.Alpaca.Paper = parseBool(v)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_ENABLED"); v != "" {
		cfg.LLM.Enabled = parseBool(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("NOTIFICATION_EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("NOTIFICATION_EMAIL_TO"); v != "" {
		cfg.Email.To = v
	}
	if v := os.Getenv("NOTIFICATION_EMAIL_APP_PASSWORD"); v != "" {
		cfg.Email.AppPassword = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Alpaca.BaseURL == "" {
		if cfg.Alpaca.Paper {
			cfg.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
		} else {
			cfg.Alpaca.BaseURL = "https://api.alpaca.markets"
		}
	}
	// The SDK appends /v2 itself.
	cfg.Alpaca.BaseURL = strings.TrimSuffix(strings.TrimRight(cfg.Alpaca.BaseURL, "/"), "/v2")
	if cfg.Alpaca.Feed == "" {
		cfg.Alpaca.Feed = "iex"
	}
	if cfg.Alpaca.OptionFeed == "" {
		cfg.Alpaca.OptionFeed = "indicative"
	}

	if len(cfg.Watchlist.Core) == 0 {
		cfg.Watchlist.Core = DefaultCoreWatchlist
	}
	if len(cfg.Watchlist.ScannerUniverse) == 0 {
		cfg.Watchlist.ScannerUniverse = DefaultScannerUniverse
	}
	if cfg.Watchlist.ScannerTopN == 0 {
		cfg.Watchlist.ScannerTopN = 5
	}

	s := &cfg.Strategy
	if s.RSIPeriod == 0 {
		s.RSIPeriod = 14
	}
	if s.RSIOversold == 0 {
		s.RSIOversold = 30
	}
	if s.RSIOverbought == 0 {
		s.RSIOverbought = 70
	}
	if s.MACDFast == 0 {
		s.MACDFast = 12
	}
	if s.MACDSlow == 0 {
		s.MACDSlow = 26
	}
	if s.MACDSignal == 0 {
		s.MACDSignal = 9
	}
	if s.EMAFast == 0 {
		s.EMAFast = 9
	}
	if s.EMASlow == 0 {
		s.EMASlow = 21
	}
	if s.VolumeWindow == 0 {
		s.VolumeWindow = 20
	}
	if s.VolumeMultiplier == 0 {
		s.VolumeMultiplier = 1.5
	}
	if s.SignalThreshold == 0 {
		s.SignalThreshold = 1
	}

	r := &cfg.Risk
	if r.MaxPositionPct == 0 {
		r.MaxPositionPct = 10
	}
	if r.MaxOpenPositions == 0 {
		r.MaxOpenPositions = 4
	}
	if r.StopLossPct == 0 {
		r.StopLossPct = 15
	}
	if r.TakeProfitPct == 0 {
		r.TakeProfitPct = 20
	}
	if r.MaxHoldDays == 0 {
		r.MaxHoldDays = 5
	}

	o := &cfg.Options
	if o.DTEMin == 0 {
		o.DTEMin = 14
	}
	if o.DTEMax == 0 {
		o.DTEMax = 60
	}
	if o.DeltaMin == 0 {
		o.DeltaMin = 0.25
	}
	if o.DeltaMax == 0 {
		o.DeltaMax = 0.60
	}
	if o.MinOpenInterest == 0 {
		o.MinOpenInterest = 100
	}

	sched := &cfg.Schedule
	if sched.Timezone == "" {
		sched.Timezone = "America/New_York"
	}
	if sched.PremarketCron == "" {
		sched.PremarketCron = "0 0 9 * * 1-5"
	}
	if sched.OpenScanCron == "" {
		sched.OpenScanCron = "0 45 9 * * 1-5"
	}
	if sched.RecurringScanCron == "" {
		sched.RecurringScanCron = "0 0,30 10-15 * * 1-5"
	}
	if sched.TrackCron == "" {
		sched.TrackCron = "0 */5 9-16 * * 1-5"
	}
	if sched.FridayCloseCron == "" {
		sched.FridayCloseCron = "0 0 15 * * 5"
	}
	if sched.SummaryCron == "" {
		sched.SummaryCron = "0 15 16 * * 1-5"
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 256
	}
	if cfg.LLM.TimeoutSec == 0 {
		cfg.LLM.TimeoutSec = 10
	}

	if cfg.Email.Host == "" {
		cfg.Email.Host = "smtp.gmail.com"
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 465
	}

	if cfg.Trading.PositionsFile == "" {
		cfg.Trading.PositionsFile = "data/positions.json"
	}
	if cfg.Trading.OrderRetries == 0 {
		cfg.Trading.OrderRetries = 3
	}
	if cfg.Trading.OrderRetryDelaySec == 0 {
		cfg.Trading.OrderRetryDelaySec = 2
	}

	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trading_bot.db"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" {
		return fmt.Errorf("alpaca.api_key is required")
	}
	if c.Alpaca.APISecret == "" {
		return fmt.Errorf("alpaca.api_secret is required")
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required when the LLM filter is enabled")
	}
	if c.Risk.MaxPositionPct <= 0 || c.Risk.MaxPositionPct > 100 {
		return fmt.Errorf("risk.max_position_pct must be in (0, 100]")
	}
	if c.Options.DTEMin > c.Options.DTEMax {
		return fmt.Errorf("options.dte_min must not exceed options.dte_max")
	}
	return nil
}

func parseBool(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "y", "on":
		return true
	}
	return false
}
