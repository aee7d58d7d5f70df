package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. FINLAB_TICKERS.
const EnvPrefix = "FINLAB"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout" validate:"oneof=stdout stderr"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0" validate:"required"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		CORS            bool          `yaml:"cors"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CacheTTL        time.Duration `yaml:"cache_ttl" default:"30s"`
	} `yaml:"server"`
	Metrics struct {
		Path    string `yaml:"path" default:"/metrics"`
		PushURL string `yaml:"push_url" validate:"omitempty,url"`
		Job     string `yaml:"job" default:"finlab"`
	} `yaml:"metrics"`
	Paths struct {
		RawDir      string `yaml:"raw_dir" default:"data/raw" validate:"required"`
		DatasetPath string `yaml:"dataset_path" default:"data/processed/model_dataset.parquet" validate:"required"`
		ReportDir   string `yaml:"report_dir" default:"outputs/day3" validate:"required"`
	} `yaml:"paths"`
	Download struct {
		BaseURL  string            `yaml:"base_url" default:"https://stooq.com/q/d/l/" validate:"required,url"`
		Tickers  map[string]string `yaml:"tickers" default:"{\"SPY\":\"spy.us\",\"QQQ\":\"qqq.us\",\"IWM\":\"iwm.us\"}" validate:"required,min=1"`
		Timeout  time.Duration     `yaml:"timeout" default:"30s"`
		RPS      float64           `yaml:"rps" default:"5" validate:"gt=0"`
		Burst    int               `yaml:"burst" default:"1" validate:"gte=1"`
		Attempts int               `yaml:"attempts" default:"3" validate:"gte=1"`
		CacheTTL time.Duration     `yaml:"cache_ttl" default:"6h"`
	} `yaml:"download"`
	Dataset struct {
		TrainFrac float64 `yaml:"train_frac" default:"0.70" validate:"gt=0,lt=1"`
		ValFrac   float64 `yaml:"val_frac" default:"0.15" validate:"gt=0,lt=1"`
		Workers   int     `yaml:"workers" default:"4" validate:"gte=1"`
		Source    string  `yaml:"source" default:"parquet" validate:"oneof=parquet clickhouse"`
	} `yaml:"dataset"`
	Baseline struct {
		Features []string `yaml:"features" default:"[\"ret_1d\",\"ret_5d\",\"logret_1d\",\"vol_10d\",\"vol_20d\",\"price_sma20\",\"sma20_sma50\",\"drawdown_60\"]" validate:"required,min=1"`
		Target   string   `yaml:"target" default:"y_dir_1d" validate:"required"`
		C        float64  `yaml:"c" default:"1" validate:"gt=0"`
		MaxIter  int      `yaml:"max_iter" default:"2000" validate:"gte=1"`
	} `yaml:"baseline"`
	Report struct {
		XLSX bool `yaml:"xlsx"`
	} `yaml:"report"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string   `yaml:"topic" default:"finlab.events"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finlab"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// envOverrides are the variables honoured on top of the YAML file.
type envOverrides struct {
	Environment  string            `envconfig:"ENVIRONMENT"`
	LogLevel     string            `envconfig:"LOG_LEVEL"`
	Tickers      map[string]string `envconfig:"TICKERS"`
	KafkaBrokers []string          `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string            `envconfig:"KAFKA_TOPIC"`
	RedisAddr    string            `envconfig:"REDIS_ADDR"`
	CHPassword   string            `envconfig:"CLICKHOUSE_PASSWORD"`
	PushURL      string            `envconfig:"PUSH_URL"`
}

var validate = validator.New()

// Default returns a valid configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file, fills unset fields with defaults
// and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML (or defaults when path is empty or missing) and
// overrides it with FINLAB_* environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if path == "" {
		c = Default()
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c = Default()
	} else {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("env config: %w", err)
	}
	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if len(env.Tickers) > 0 {
		c.Download.Tickers = env.Tickers
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
	}
	if env.KafkaTopic != "" {
		c.Kafka.Topic = env.KafkaTopic
	}
	if env.RedisAddr != "" {
		c.Redis.Addr = env.RedisAddr
	}
	if env.CHPassword != "" {
		c.ClickHouse.Password = env.CHPassword
	}
	if env.PushURL != "" {
		c.Metrics.PushURL = env.PushURL
	}
	return nil
}

// Validate checks field constraints and the cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Dataset.TrainFrac+c.Dataset.ValFrac >= 1 {
		return fmt.Errorf("dataset.train_frac + dataset.val_frac must be < 1, got %.4f",
			c.Dataset.TrainFrac+c.Dataset.ValFrac)
	}
	if c.Dataset.Source == "clickhouse" && !c.ClickHouse.Enabled {
		return fmt.Errorf("dataset.source is clickhouse but clickhouse.enabled is false")
	}
	return nil
}

// TickerSymbols returns the configured tickers in sorted order.
func (c *Config) TickerSymbols() []string {
	out := make([]string, 0, len(c.Download.Tickers))
	for t := range c.Download.Tickers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
