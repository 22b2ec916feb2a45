// Package config
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amirphl/pantheon/internal/indicator"
)

/*
YAML config example:
symbol: "AAPL"
cash: 10000
strategy: "composite"
max_risk: 0.02
from: "2020-01-01"
indicators:
  rsi_period: 14
  macd_short: 12
  macd_long: 26
  macd_signal: 9
feed:
  source: "csv"
  csv_path: "CSV/aapl_clean.csv"
db:
  conn_str: "postgres://..."
log:
  level: "debug"
  format: "json"
report:
  dir: "out"
  formats: ["csv", "parquet"]
sweep:
  strategies: ["composite", "rsi-band"]
  risks: [0.01, 0.02]
  workers: 4
*/

const (
	EnvDBConnStr    = "PANTHEON_DB_CONN_STR"
	EnvWallexAPIKey = "WALLEX_API_KEY"
	EnvLogLevel     = "PANTHEON_LOG_LEVEL"

	DateLayout = "2006-01-02"
)

var validate = validator.New()

type Config struct {
	Symbol     string           `yaml:"symbol" default:"AAPL" validate:"required"`
	Cash       float64          `yaml:"cash" default:"10000" validate:"gt=0"`
	Strategy   string           `yaml:"strategy" default:"composite" validate:"required"`
	MaxRisk    float64          `yaml:"max_risk" default:"0.02" validate:"gt=0,lte=1"`
	MinHistory int              `yaml:"min_history" default:"40" validate:"gte=0"`
	From       Date             `yaml:"from"`
	To         Date             `yaml:"to"`
	Indicators indicator.Params `yaml:"indicators"`
	Feed       Feed             `yaml:"feed"`
	DB         DB               `yaml:"db"`
	Log        Log              `yaml:"log"`
	Report     Report           `yaml:"report"`
	Sweep      Sweep            `yaml:"sweep"`
}

// Feed selects where historical bars come from.
type Feed struct {
	Source        string        `yaml:"source" default:"csv" validate:"oneof=csv postgres wallex yahoo"`
	CSVPath       string        `yaml:"csv_path" default:"CSV/aapl_clean.csv"`
	Timeframe     string        `yaml:"timeframe" default:"1d" validate:"oneof=1m 5m 15m 30m 1h 4h 1d 1D"`
	WallexAPIKey  string        `yaml:"wallex_api_key"`
	RetryAttempts int           `yaml:"retry_attempts" default:"3" validate:"gte=1"`
	RetryDelay    time.Duration `yaml:"retry_delay" default:"2s"`
	Timeout       time.Duration `yaml:"timeout" default:"30s"`
}

type DB struct {
	ConnStr string `yaml:"conn_str"`
	MaxOpen int    `yaml:"max_open" default:"4" validate:"gte=1"`
	MaxIdle int    `yaml:"max_idle" default:"2" validate:"gte=0"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stderr"` // stdout, stderr or a file path
}

type Report struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats" default:"[\"csv\"]" validate:"dive,oneof=csv json parquet"`
}

type Sweep struct {
	Strategies []string  `yaml:"strategies" default:"[\"composite\",\"ema-crossover\",\"macd-crossover\",\"rsi-band\"]" validate:"dive,required"`
	Risks      []float64 `yaml:"risks" default:"[0.01,0.02,0.05]" validate:"dive,gt=0,lte=1"`
	Workers    int       `yaml:"workers" validate:"gte=0"` // 0 uses every CPU
}

// Date is a calendar date written as YYYY-MM-DD. The zero Date is an open bound.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	if strings.TrimSpace(s) == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return Date{t}, nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(DateLayout), nil
}

// Default returns the configuration with every default applied and nothing
// read from disk or the environment.
func Default() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		// Tags are static, so this only fails on a programming error.
		panic(fmt.Sprintf("config: bad default tag: %v", err))
	}
	return cfg
}

// Load builds the configuration from defaults, the optional YAML file at path,
// a .env file in the working directory and finally the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("Load | failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("Load | failed to parse config file: %w", err)
		}
	}

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv(EnvDBConnStr); val != "" {
		c.DB.ConnStr = val
	}
	if val := os.Getenv(EnvWallexAPIKey); val != "" {
		c.Feed.WallexAPIKey = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
}

// Validate checks field constraints and the rules that span sections.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("invalid config: %s: %w", strings.Join(msgs, "; "), err)
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Feed.Source {
	case "csv":
		if c.Feed.CSVPath == "" {
			return errors.New("invalid config: feed.csv_path is required for the csv source")
		}
	case "postgres":
		if c.DB.ConnStr == "" {
			return fmt.Errorf("invalid config: db.conn_str (or %s) is required for the postgres source", EnvDBConnStr)
		}
	}

	if !c.From.IsZero() && !c.To.IsZero() && !c.From.Before(c.To.Time) {
		return fmt.Errorf("invalid config: from %s must be before to %s",
			c.From.Format(DateLayout), c.To.Format(DateLayout))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
