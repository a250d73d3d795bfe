package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Heuristics collects every tunable threshold the analytics engines consume.
// The algorithms never carry magic numbers of their own; everything that can
// be tuned lives here.
type Heuristics struct {
	Risk     RiskHeuristics     `mapstructure:"risk"`
	Stockout StockoutHeuristics `mapstructure:"stockout"`
	Pipeline PipelineHeuristics `mapstructure:"pipeline"`
}

// ScoreTier awards Points when the observed value crosses Limit.
// Tiers are evaluated in order; the first match wins.
type ScoreTier struct {
	Limit  float64 `mapstructure:"limit"`
	Points int     `mapstructure:"points"`
}

// RiskHeuristics holds the additive scoring tiers of the risk scorer.
type RiskHeuristics struct {
	// StockTiers match when currentQty/parLevel <= Limit.
	StockTiers []ScoreTier `mapstructure:"stockTiers"`
	// VelocityTiers match when salesVelocity > Limit.
	VelocityTiers []ScoreTier `mapstructure:"velocityTiers"`
	// SupplyTiers match when daysOfSupply < Limit.
	SupplyTiers []ScoreTier `mapstructure:"supplyTiers"`
}

// StockoutHeuristics controls when a machine/product pair is flagged.
type StockoutHeuristics struct {
	MinStreakDays    int `mapstructure:"minStreakDays"`
	QuietPrevTx      int `mapstructure:"quietPrevTx"`
	DropPctThreshold int `mapstructure:"dropPctThreshold"`
}

// PipelineHeuristics controls prospect KPI classification.
type PipelineHeuristics struct {
	StalledAfterDays int `mapstructure:"stalledAfterDays"`
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		Risk: RiskHeuristics{
			StockTiers: []ScoreTier{
				{Limit: 0.0, Points: 40},
				{Limit: 0.2, Points: 35},
				{Limit: 0.5, Points: 25},
				{Limit: 0.8, Points: 15},
			},
			VelocityTiers: []ScoreTier{
				{Limit: 5, Points: 30},
				{Limit: 3, Points: 20},
				{Limit: 1, Points: 10},
			},
			SupplyTiers: []ScoreTier{
				{Limit: 1, Points: 30},
				{Limit: 3, Points: 20},
				{Limit: 7, Points: 10},
			},
		},
		Stockout: StockoutHeuristics{
			MinStreakDays:    2,
			QuietPrevTx:      5,
			DropPctThreshold: 70,
		},
		Pipeline: PipelineHeuristics{
			StalledAfterDays: 30,
		},
	}
}

// HeuristicsHolder hands out the current heuristics and swaps them atomically
// when the config file changes on disk.
type HeuristicsHolder struct {
	current atomic.Value // holds Heuristics
}

func NewHeuristicsHolder() (*HeuristicsHolder, error) {
	v := viper.New()

	v.SetConfigName("heuristics")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/vendhub/config") // Volume-mounted config
	v.AddConfigPath("/etc/vendhub")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("VENDHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultHeuristics()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		if err := v.UnmarshalKey("heuristics", &cfg); err != nil {
			return nil, err
		}
		if err := validateHeuristics(cfg); err != nil {
			return nil, err
		}
	}

	holder := &HeuristicsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultHeuristics()
		if err := v.UnmarshalKey("heuristics", &updated); err != nil {
			log.Printf("[heuristics] reload failed: %v", err)
			return
		}
		if err := validateHeuristics(updated); err != nil {
			log.Printf("[heuristics] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[heuristics] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *HeuristicsHolder) Get() Heuristics {
	return h.current.Load().(Heuristics)
}

// NewStaticHeuristicsHolder wraps fixed heuristics without file watching.
// Intended for tests.
func NewStaticHeuristicsHolder(cfg Heuristics) *HeuristicsHolder {
	holder := &HeuristicsHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateHeuristics(cfg Heuristics) error {
	if len(cfg.Risk.StockTiers) == 0 || len(cfg.Risk.VelocityTiers) == 0 || len(cfg.Risk.SupplyTiers) == 0 {
		return errors.New("heuristics.risk tiers cannot be empty")
	}
	for _, tier := range append(append(append([]ScoreTier{}, cfg.Risk.StockTiers...), cfg.Risk.VelocityTiers...), cfg.Risk.SupplyTiers...) {
		if tier.Points < 0 {
			return errors.New("heuristics.risk tier points cannot be negative")
		}
	}
	if cfg.Stockout.MinStreakDays <= 0 {
		return errors.New("heuristics.stockout.minStreakDays must be positive")
	}
	if cfg.Stockout.DropPctThreshold <= 0 || cfg.Stockout.DropPctThreshold > 100 {
		return errors.New("heuristics.stockout.dropPctThreshold must be in (0,100]")
	}
	if cfg.Pipeline.StalledAfterDays <= 0 {
		return errors.New("heuristics.pipeline.stalledAfterDays must be positive")
	}
	return nil
}
