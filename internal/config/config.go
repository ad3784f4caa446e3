package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// App Settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	Workers  int    `envconfig:"MAX_WORKERS" default:"6"`

	// Direct fetch
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchAttempts  int           `envconfig:"FETCH_ATTEMPTS" default:"2"`
	FetchBaseDelay time.Duration `envconfig:"FETCH_BASE_DELAY" default:"1s"`
	FetchJitter    time.Duration `envconfig:"FETCH_JITTER" default:"2s"`
	FetchRate      float64       `envconfig:"FETCH_RATE" default:"2"`
	SocksProxy     string        `envconfig:"SOCKS_PROXY" default:""`

	// Rendering escalation
	RenderEndpoint   string        `envconfig:"RENDER_ENDPOINT" default:""`
	RenderTimeout    time.Duration `envconfig:"RENDER_TIMEOUT" default:"60s"`
	RenderSettle     time.Duration `envconfig:"RENDER_SETTLE" default:"5s"`
	RenderSettleHigh time.Duration `envconfig:"RENDER_SETTLE_HIGH" default:"8s"`

	// Scheduling pacing between sources
	PaceMin time.Duration `envconfig:"PACE_MIN" default:"1s"`
	PaceMax time.Duration `envconfig:"PACE_MAX" default:"3s"`

	// Sources
	SourceFile string `envconfig:"SOURCE_FILE" default:""`

	// Classification (Stage 2)
	Classify        bool     `envconfig:"CLASSIFY" default:"true"`
	TargetRegions   []string `envconfig:"TARGET_REGIONS" default:"HK,JP,SG"`
	GeoIPPath       string   `envconfig:"GEOIP_PATH" default:""`
	IntervalSources []string `envconfig:"INTERVAL_SOURCES" default:""`
	Progress        bool     `envconfig:"PROGRESS" default:"true"`

	// File System Paths
	OutputPath       string `envconfig:"OUTPUT_PATH" default:"ip.txt"`
	RegionOutputPath string `envconfig:"REGION_OUTPUT_PATH" default:"ip2.txt"`

	// Notifications
	TelegramToken  string `envconfig:"TELEGRAM_TOKEN" default:""`
	TelegramChatID string `envconfig:"TELEGRAM_CHAT_ID" default:""`
}

// Load reads .env and processes environment variables
func Load() *Config {
	// Silently ignore if .env is missing (production might use real ENV vars)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Configuration Error: %v", err)
	}
	return &cfg
}
