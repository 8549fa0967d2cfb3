package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/config"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/llm"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/logger"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/marketdata"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/notifier"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/options"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/recorder"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/risk"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/scanner"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/scheduler"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/strategy"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/trading"
)

func main() {
	// .env is optional, real deployments use the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Bool("paper", cfg.Alpaca.Paper).Str("base_url", cfg.Alpaca.BaseURL).Msg("starting trading bot")

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Schedule.Timezone).Msg("load timezone")
	}

	tradingClient := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
	})
	dataClient := md.NewClient(md.ClientOpts{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
	})

	fetcher := marketdata.NewAlpacaFetcher(tradingClient, dataClient, md.Feed(cfg.Alpaca.Feed))
	chain := options.NewAlpacaChainFetcher(tradingClient, dataClient, md.OptionFeed(cfg.Alpaca.OptionFeed))

	account, err := fetcher.Account()
	if err != nil {
		log.Fatal().Err(err).Msg("account check failed, verify credentials")
	}
	log.Info().Float64("portfolio_value", account.PortfolioValue).
		Str("status", account.Status).Int("positions", len(account.Positions)).Msg("account connected")

	engine := strategy.New(strategy.Params{
		RSIPeriod:        cfg.Strategy.RSIPeriod,
		RSIOversold:      cfg.Strategy.RSIOversold,
		RSIOverbought:    cfg.Strategy.RSIOverbought,
		MACDFast:         cfg.Strategy.MACDFast,
		MACDSlow:         cfg.Strategy.MACDSlow,
		MACDSignal:       cfg.Strategy.MACDSignal,
		EMAFast:          cfg.Strategy.EMAFast,
		EMASlow:          cfg.Strategy.EMASlow,
		VolumeWindow:     cfg.Strategy.VolumeWindow,
		VolumeMultiplier: cfg.Strategy.VolumeMultiplier,
		Threshold:        cfg.Strategy.SignalThreshold,
	})
	riskEngine := risk.New(risk.Limits{
		MaxPositionPct:   cfg.Risk.MaxPositionPct,
		MaxOpenPositions: cfg.Risk.MaxOpenPositions,
		StopLossPct:      cfg.Risk.StopLossPct,
		TakeProfitPct:    cfg.Risk.TakeProfitPct,
		MaxHoldDays:      cfg.Risk.MaxHoldDays,
	})
	selector := options.NewSelector(chain, options.Criteria{
		DTEMin:          cfg.Options.DTEMin,
		DTEMax:          cfg.Options.DTEMax,
		DeltaMin:        cfg.Options.DeltaMin,
		DeltaMax:        cfg.Options.DeltaMax,
		MinOpenInterest: cfg.Options.MinOpenInterest,
	})

	store, err := trading.NewOpenDateStore(cfg.Trading.PositionsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open position store")
	}
	executor := trading.NewAlpacaExecutor(tradingClient, trading.RetryPolicy{
		MaxAttempts: cfg.Trading.OrderRetries,
		Delay:       time.Duration(cfg.Trading.OrderRetryDelaySec) * time.Second,
	})
	tracker := trading.NewTracker(fetcher, riskEngine, executor, store, loc)

	scan := scanner.New(fetcher, chain, cfg.Watchlist.ScannerUniverse, cfg.Watchlist.ScannerTopN)

	var completer llm.Completer
	if cfg.LLM.Enabled {
		completer = llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens,
			time.Duration(cfg.LLM.TimeoutSec)*time.Second)
	}
	filter := llm.NewFilter(completer, fetcher, cfg.LLM.Enabled,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second)

	var note notifier.Notifier = notifier.NoopNotifier{}
	if cfg.Email.From != "" && cfg.Email.To != "" && cfg.Email.AppPassword != "" {
		note = notifier.NewEmailNotifier(cfg.Email.Host, cfg.Email.Port,
			cfg.Email.From, cfg.Email.To, cfg.Email.AppPassword)
	}
	log.Info().Str("notifier", note.Name()).Bool("llm_filter", cfg.LLM.Enabled).Msg("components wired")

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite recorder unavailable, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	sched := scheduler.NewScheduler(scheduler.Deps{
		Fetcher:  fetcher,
		Engine:   engine,
		Selector: selector,
		Risk:     riskEngine,
		Executor: executor,
		Tracker:  tracker,
		Scanner:  scan,
		Filter:   filter,
		Notifier: note,
		Summary:  notifier.NewAccumulator(),
		Recorder: rec,
		Core:     cfg.Watchlist.Core,
		Location: loc,
	})
	if err := sched.RegisterAll(scheduler.CronSpecs{
		Premarket:     cfg.Schedule.PremarketCron,
		OpenScan:      cfg.Schedule.OpenScanCron,
		RecurringScan: cfg.Schedule.RecurringScanCron,
		Track:         cfg.Schedule.TrackCron,
		FridayClose:   cfg.Schedule.FridayCloseCron,
		Summary:       cfg.Schedule.SummaryCron,
	}); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Run the scanner once at boot so a restart mid-day still has a
	// watchlist; the job itself skips non-market days.
	log.Info().Msg("executing pre-market scan at startup")
	go sched.RunPremarketNow()

	log.Info().Msg("trading bot is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
}
