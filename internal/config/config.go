// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"` // guards voucher admin endpoints
	CronAPIKey  string `yaml:"cron_api_key"`  // guards the job endpoints
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type BillingConfig struct {
	ExpiryHorizon      time.Duration `yaml:"expiry_horizon"` // how long a transaction stays payable
	USDRate            string        `yaml:"usd_rate"`       // IDR per USD, decimal string
	ServiceFeeIDR      string        `yaml:"service_fee_idr"`
	ServiceFeeUSD      string        `yaml:"service_fee_usd"`
	VoucherCheckLimit  int           `yaml:"voucher_check_limit"` // per-user checks per window
	VoucherCheckWindow time.Duration `yaml:"voucher_check_window"`
}

type PaymentConfig struct {
	Gateway        string        `yaml:"gateway"` // simulated | noop
	SimulatedDelay time.Duration `yaml:"simulated_delay"`
	CallbackURL    string        `yaml:"callback_url"`
}

type SchedulerConfig struct {
	ExpiryInterval time.Duration `yaml:"expiry_interval"`
	ExpiryBatch    int           `yaml:"expiry_batch"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	SweepBatch     int           `yaml:"sweep_batch"`
}

type NotifyConfig struct {
	BaseURL string `yaml:"base_url"` // WhatsApp gateway API
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"`
	Retries int    `yaml:"retries"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Billing   BillingConfig   `yaml:"billing"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Notify    NotifyConfig    `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// env overrides for secrets
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("ADMIN_API_KEY"); v != "" {
		cfg.Server.AdminAPIKey = v
	}
	if v := os.Getenv("CRON_API_KEY"); v != "" {
		cfg.Server.CronAPIKey = v
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.Billing.ExpiryHorizon <= 0 {
		cfg.Billing.ExpiryHorizon = 7 * 24 * time.Hour
	}
	if cfg.Billing.USDRate == "" {
		cfg.Billing.USDRate = "15500"
	}
	if cfg.Billing.ServiceFeeIDR == "" {
		cfg.Billing.ServiceFeeIDR = "5000"
	}
	if cfg.Billing.ServiceFeeUSD == "" {
		cfg.Billing.ServiceFeeUSD = "0.5"
	}
	if cfg.Billing.VoucherCheckLimit <= 0 {
		cfg.Billing.VoucherCheckLimit = 10
	}
	if cfg.Billing.VoucherCheckWindow <= 0 {
		cfg.Billing.VoucherCheckWindow = time.Minute
	}
	if cfg.Payment.Gateway == "" {
		cfg.Payment.Gateway = "simulated"
	}
	if cfg.Payment.SimulatedDelay <= 0 {
		cfg.Payment.SimulatedDelay = 2 * time.Second
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Minute
	}
	if cfg.Scheduler.ExpiryBatch <= 0 {
		cfg.Scheduler.ExpiryBatch = 100
	}
	if cfg.Scheduler.SweepInterval <= 0 {
		cfg.Scheduler.SweepInterval = 5 * time.Minute
	}
	if cfg.Scheduler.SweepBatch <= 0 {
		cfg.Scheduler.SweepBatch = 100
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 4
	}
	if cfg.Notify.Retries <= 0 {
		cfg.Notify.Retries = 3
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
