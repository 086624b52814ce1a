package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths         PathsConfig         `yaml:"paths" mapstructure:"paths"`
	Labels        LabelsConfig        `yaml:"labels" mapstructure:"labels"`
	RestCountries RestCountriesConfig `yaml:"restcountries" mapstructure:"restcountries"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the asset tree of the quiz application.
type PathsConfig struct {
	MapsDir    string `yaml:"maps_dir" mapstructure:"maps_dir"`
	Catalog    string `yaml:"catalog" mapstructure:"catalog"`
	FlagsDir   string `yaml:"flags_dir" mapstructure:"flags_dir"`
	DartOutput string `yaml:"dart_output" mapstructure:"dart_output"`
}

// LabelsConfig configures label geometry synthesis. Offsets and class
// memberships are keyed by class name (up_right, down_right, up_left, down_left).
type LabelsConfig struct {
	CodeKey   string               `yaml:"code_key" mapstructure:"code_key"`
	HalfWidth float64              `yaml:"half_width" mapstructure:"half_width"`
	Offsets   map[string][]float64 `yaml:"offsets" mapstructure:"offsets"`
	Classes   map[string][]string  `yaml:"classes" mapstructure:"classes"`
}

// RestCountriesConfig holds REST Countries API settings.
type RestCountriesConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	BatchSize   int     `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("geoprep")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.maps_dir", "assets/maps")
	v.SetDefault("paths.catalog", "assets/datas/countries.json")
	v.SetDefault("paths.flags_dir", "assets/flags")
	v.SetDefault("paths.dart_output", "lib/icons/flag_sprite_order.dart")
	v.SetDefault("labels.code_key", "ISO3166-1-Alpha-2")
	v.SetDefault("labels.half_width", 0.75)
	v.SetDefault("labels.offsets", map[string][]float64{
		"up_right":   {5.0, 5.0},
		"down_right": {5.0, -5.0},
		"up_left":    {-5.0, 5.0},
		"down_left":  {-5.0, -5.0},
	})
	v.SetDefault("labels.classes", map[string][]string{
		"up_right":   {"KM", "SC"},
		"down_right": {},
		"up_left":    {"CV"},
		"down_left":  {"GQ", "GM", "ST", "MU"},
	})
	v.SetDefault("restcountries.base_url", "https://restcountries.com/v3.1")
	v.SetDefault("restcountries.rate_limit", 5.0)
	v.SetDefault("restcountries.batch_size", 20)
	v.SetDefault("restcountries.concurrency", 4)
	v.SetDefault("restcountries.timeout_secs", 10)
	v.SetDefault("restcountries.max_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// knownClasses lists the offset class names accepted under labels.offsets
// and labels.classes.
var knownClasses = map[string]bool{
	"up_right":   true,
	"down_right": true,
	"up_left":    true,
	"down_left":  true,
}

// Validate checks the settings a command mode depends on. Modes: labels,
// catalog, fetch, flags, outline, extract.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "labels":
		if c.Labels.CodeKey == "" {
			errs = append(errs, "labels.code_key is required")
		}
		if c.Labels.HalfWidth <= 0 {
			errs = append(errs, "labels.half_width must be > 0")
		}
		for name, off := range c.Labels.Offsets {
			if !knownClasses[name] {
				errs = append(errs, "labels.offsets: unknown class "+name)
				continue
			}
			if len(off) != 2 {
				errs = append(errs, "labels.offsets."+name+" must be [dx, dy]")
			}
		}
		for name := range c.Labels.Classes {
			if !knownClasses[name] {
				errs = append(errs, "labels.classes: unknown class "+name)
				continue
			}
			if len(c.Labels.Offsets[name]) != 2 {
				errs = append(errs, "labels.classes."+name+" has no offset")
			}
		}
	case "catalog":
		if c.Paths.Catalog == "" {
			errs = append(errs, "paths.catalog is required")
		}
		if c.Paths.MapsDir == "" {
			errs = append(errs, "paths.maps_dir is required")
		}
	case "fetch":
		if c.RestCountries.BaseURL == "" {
			errs = append(errs, "restcountries.base_url is required")
		}
		if c.RestCountries.RateLimit <= 0 {
			errs = append(errs, "restcountries.rate_limit must be > 0")
		}
		if c.RestCountries.BatchSize < 1 || c.RestCountries.BatchSize > 100 {
			errs = append(errs, "restcountries.batch_size must be between 1 and 100")
		}
		if c.RestCountries.Concurrency < 1 || c.RestCountries.Concurrency > 16 {
			errs = append(errs, "restcountries.concurrency must be between 1 and 16")
		}
		if c.RestCountries.MaxAttempts < 1 {
			errs = append(errs, "restcountries.max_attempts must be >= 1")
		}
	case "flags":
		if c.Paths.FlagsDir == "" {
			errs = append(errs, "paths.flags_dir is required")
		}
		if c.Paths.DartOutput == "" {
			errs = append(errs, "paths.dart_output is required")
		}
	case "outline", "extract":
		if c.Paths.MapsDir == "" {
			errs = append(errs, "paths.maps_dir is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
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
