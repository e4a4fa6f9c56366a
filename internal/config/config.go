package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"TripBroker/internal/allocation"
	"TripBroker/internal/bidding"
	"TripBroker/internal/engine"
	"TripBroker/internal/market/sim"
)

// Config holds all application configuration.
type Config struct {
	Game struct {
		Length        time.Duration `yaml:"length"`
		FlightHorizon int           `yaml:"flight_horizon"`
		DemandSamples int           `yaml:"demand_samples"`
	} `yaml:"game"`
	Flight struct {
		OpeningWindow time.Duration `yaml:"opening_window"`
		ClosingWindow time.Duration `yaml:"closing_window"`
	} `yaml:"flight"`
	Hotel struct {
		NormalCeiling     float64       `yaml:"normal_ceiling"`
		FinalCeiling      float64       `yaml:"final_ceiling"`
		FinalWindow       time.Duration `yaml:"final_window"`
		StopThreshold     time.Duration `yaml:"stop_threshold"`
		OffsetFloor       int           `yaml:"offset_floor"`
		DemandFactor      float64       `yaml:"demand_factor"`
		ResetFinalOnClose bool          `yaml:"reset_final_on_close"`
	} `yaml:"hotel"`
	Entertainment struct {
		Ceiling   float64 `yaml:"ceiling"`
		SellStart float64 `yaml:"sell_start"`
		SellStep  float64 `yaml:"sell_step"`
		SellFloor float64 `yaml:"sell_floor"`
		TiePolicy string  `yaml:"tie_policy"`
	} `yaml:"entertainment"`
	Schedule struct {
		HotelWatch    string `yaml:"hotel_watch"`
		Entertainment string `yaml:"entertainment"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Journal struct {
		Dir string `yaml:"dir"`
	} `yaml:"journal"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	API struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"api"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Simulator struct {
		Seed  int64   `yaml:"seed"`
		Speed float64 `yaml:"speed"`
		Games int     `yaml:"games"`
	} `yaml:"simulator"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("JOURNAL_DIR"); v != "" {
		cfg.Journal.Dir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SIM_SEED: %w", err)
		}
		cfg.Simulator.Seed = seed
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	flight := bidding.DefaultFlightPolicy()
	hotel := bidding.DefaultHotelPolicy()
	ent := bidding.DefaultEntertainmentPolicy()

	if c.Game.Length == 0 {
		c.Game.Length = 9 * time.Minute
	}
	if c.Game.FlightHorizon == 0 {
		c.Game.FlightHorizon = flight.Horizon
	}
	if c.Game.DemandSamples == 0 {
		c.Game.DemandSamples = 8
	}
	if c.Flight.OpeningWindow == 0 {
		c.Flight.OpeningWindow = flight.OpeningWindow
	}
	if c.Flight.ClosingWindow == 0 {
		c.Flight.ClosingWindow = flight.ClosingWindow
	}
	if c.Hotel.NormalCeiling == 0 {
		c.Hotel.NormalCeiling = hotel.NormalCeiling
	}
	if c.Hotel.FinalCeiling == 0 {
		c.Hotel.FinalCeiling = hotel.FinalCeiling
	}
	if c.Hotel.FinalWindow == 0 {
		c.Hotel.FinalWindow = hotel.FinalWindow
	}
	if c.Hotel.StopThreshold == 0 {
		c.Hotel.StopThreshold = hotel.StopThreshold
	}
	if c.Hotel.OffsetFloor == 0 {
		c.Hotel.OffsetFloor = hotel.OffsetFloor
	}
	if c.Hotel.DemandFactor == 0 {
		c.Hotel.DemandFactor = hotel.DemandFactor
	}
	if c.Entertainment.Ceiling == 0 {
		c.Entertainment.Ceiling = ent.Ceiling
	}
	if c.Entertainment.SellStart == 0 {
		c.Entertainment.SellStart = ent.SellStart
	}
	if c.Entertainment.SellStep == 0 {
		c.Entertainment.SellStep = ent.SellStep
	}
	if c.Entertainment.SellFloor == 0 {
		c.Entertainment.SellFloor = ent.SellFloor
	}
	if c.Entertainment.TiePolicy == "" {
		c.Entertainment.TiePolicy = string(allocation.TieTypeOrder)
	}
	if c.Schedule.HotelWatch == "" {
		c.Schedule.HotelWatch = "@every 2s"
	}
	if c.Schedule.Entertainment == "" {
		c.Schedule.Entertainment = "@every 5s"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "data/journal"
	}
	if c.API.Addr == "" {
		c.API.Addr = "127.0.0.1:8086"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Simulator.Speed == 0 {
		c.Simulator.Speed = 1
	}
	if c.Simulator.Games == 0 {
		c.Simulator.Games = 1
	}
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Hotel.NormalCeiling <= 0 || c.Hotel.FinalCeiling < c.Hotel.NormalCeiling {
		return fmt.Errorf("hotel ceilings must satisfy 0 < normal_ceiling <= final_ceiling")
	}
	if c.Hotel.DemandFactor < 0 || c.Hotel.OffsetFloor < 0 {
		return fmt.Errorf("hotel final offset must not be negative")
	}
	if c.Entertainment.SellFloor > c.Entertainment.SellStart {
		return fmt.Errorf("entertainment.sell_floor must not exceed sell_start")
	}
	if c.Entertainment.SellStep <= 0 {
		return fmt.Errorf("entertainment.sell_step must be positive")
	}
	if _, err := allocation.ParseTiePolicy(c.Entertainment.TiePolicy); err != nil {
		return fmt.Errorf("entertainment.tie_policy: %w", err)
	}
	if c.Game.FlightHorizon <= 0 {
		return fmt.Errorf("game.flight_horizon must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Simulator.Speed <= 0 {
		return fmt.Errorf("simulator.speed must be positive")
	}
	return nil
}

// Engine returns the agent settings.
func (c *Config) Engine() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Flight = bidding.FlightPolicy{
		OpeningWindow: c.Flight.OpeningWindow,
		ClosingWindow: c.Flight.ClosingWindow,
		Horizon:       c.Game.FlightHorizon,
	}
	cfg.Hotel = bidding.HotelPolicy{
		NormalCeiling:     c.Hotel.NormalCeiling,
		FinalCeiling:      c.Hotel.FinalCeiling,
		FinalWindow:       c.Hotel.FinalWindow,
		StopThreshold:     c.Hotel.StopThreshold,
		OffsetFloor:       c.Hotel.OffsetFloor,
		DemandFactor:      c.Hotel.DemandFactor,
		ResetFinalOnClose: c.Hotel.ResetFinalOnClose,
	}
	cfg.Entertainment = bidding.EntertainmentPolicy{
		Ceiling:   c.Entertainment.Ceiling,
		SellStart: c.Entertainment.SellStart,
		SellStep:  c.Entertainment.SellStep,
		SellFloor: c.Entertainment.SellFloor,
	}
	cfg.TiePolicy = allocation.TiePolicy(c.Entertainment.TiePolicy)
	cfg.DemandSamples = c.Game.DemandSamples
	return cfg
}

// Sim returns the simulator settings.
func (c *Config) Sim() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Seed = c.Simulator.Seed
	cfg.Speed = c.Simulator.Speed
	cfg.Length = c.Game.Length
	return cfg
}
