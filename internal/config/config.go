package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Window Window       `yaml:"window" mapstructure:"window"`
	Inputs InputsConfig `yaml:"inputs" mapstructure:"inputs"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Assign AssignConfig `yaml:"assign" mapstructure:"assign"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// Window bounds the analysis period, both dates inclusive, YYYY-MM-DD.
type Window struct {
	Start string `yaml:"start" mapstructure:"start"`
	End   string `yaml:"end" mapstructure:"end"`
}

const dateLayout = "2006-01-02"

// Dates parses and validates the window bounds.
func (w Window) Dates() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, w.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "config: parse window start %q", w.Start)
	}
	end, err := time.ParseInLocation(dateLayout, w.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrapf(err, "config: parse window end %q", w.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, eris.Errorf("config: window end %s before start %s", w.End, w.Start)
	}
	return start, end, nil
}

// InputsConfig locates the source data files.
type InputsConfig struct {
	Shapefile   string `yaml:"shapefile" mapstructure:"shapefile"`
	Centers     string `yaml:"centers" mapstructure:"centers"`
	StationMeta string `yaml:"station_meta" mapstructure:"station_meta"`
	Sunlight    string `yaml:"sunlight" mapstructure:"sunlight"`
}

// OutputConfig configures where result files land.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AssignConfig configures the daily assignment phase.
type AssignConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields a given command mode depends on and reports
// every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	if _, _, err := c.Window.Dates(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Assign.Concurrency < 1 || c.Assign.Concurrency > 64 {
		problems = append(problems, "assign.concurrency must be between 1 and 64")
	}

	switch mode {
	case "centers":
		if c.Inputs.Shapefile == "" {
			problems = append(problems, "inputs.shapefile is required")
		}
	case "assign":
		if c.Inputs.Centers == "" {
			problems = append(problems, "inputs.centers is required")
		}
		if c.Inputs.StationMeta == "" {
			problems = append(problems, "inputs.station_meta is required")
		}
		if c.Inputs.Sunlight == "" {
			problems = append(problems, "inputs.sunlight is required")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "runs":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SUNASSIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("window.start", "2007-06-01")
	v.SetDefault("window.end", "2011-08-31")
	v.SetDefault("inputs.centers", "data/sgg_centers.csv")
	v.SetDefault("inputs.station_meta", "data/station_meta.csv")
	v.SetDefault("inputs.sunlight", "data/sunlight_daily.csv")
	v.SetDefault("output.dir", "out")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sunassign.db")
	v.SetDefault("assign.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		yamlDateHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// yamlDateHook maps dates back to their YYYY-MM-DD spelling. YAML parses an
// unquoted date like `start: 2010-01-01` as time.Time, which would otherwise
// fail to unmarshal into the string-typed window fields.
var yamlDateHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data any) (any, error) {
	if from == reflect.TypeOf(time.Time{}) && to.Kind() == reflect.String {
		return data.(time.Time).Format(dateLayout), nil
	}
	return data, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
