package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
// The core components never read the environment themselves; everything they
// need is passed in from here at construction time.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/slothunter.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// RunMode selects the execution topology:
	//   loop        - single-process cooperative polling loop
	//   coordinator - enumerate doctors, emit one work item each to kafka
	//   worker      - consume work items and run per-doctor checks
	RunMode string `envconfig:"RUN_MODE" default:"loop"`

	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	DaysAhead      int           `envconfig:"DAYS_AHEAD" default:"7"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"2"`
	SendDelay      time.Duration `envconfig:"SEND_DELAY" default:"250ms"`

	ProviderHost  string `envconfig:"PROVIDER_HOST" default:"www.paziresh24.com"`
	BookingAPI    string `envconfig:"BOOKING_API" default:"https://www.paziresh24.com/booking/v2"`
	SelfCheckHold bool   `envconfig:"SELFCHECK_HOLD" default:"false"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"slothunter.doctor-checks"`
	KafkaGroup   string   `envconfig:"KAFKA_GROUP" default:"slothunter-workers"`

	AdminChatID int64 `envconfig:"ADMIN_CHAT_ID" default:"0"`
}

// Load reads an optional .env file, then the environment, into Config.
func Load() (Config, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
