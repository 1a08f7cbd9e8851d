package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/transparencia/pkg/aggregate"
	"github.com/yurifrl/transparencia/pkg/source"
)

// DefaultSourceURL is the published CSV export of the finance spreadsheet.
const DefaultSourceURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSigkTG_im1KTXViAGybCfpJ-BPqRirt4uNARHNhMgn1Q7zjwG_BJ2F_-SqIF6iydQtuhCCGpsRKO4K/pub?output=csv"

const envPrefix = "TRANSPARENCIA"

type Config struct {
	Source  SourceConfig `mapstructure:"source"`
	Server  ServerConfig `mapstructure:"server"`
	Log     LogConfig    `mapstructure:"log"`
	Locale  string       `mapstructure:"locale"`
	Palette []string     `mapstructure:"palette"`
}

type SourceConfig struct {
	URL     string        `mapstructure:"url"`
	File    string        `mapstructure:"file"`
	Format  string        `mapstructure:"format"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"source":    "source.url",
	"file":      "source.file",
	"format":    "source.format",
	"timeout":   "source.timeout",
	"locale":    "locale",
	"port":      "server.port",
	"log-level": "log.level",
}

// Build loads the configuration. Precedence, highest first: flags,
// TRANSPARENCIA_* environment (a .env file is loaded when present), the
// config file (cfgFile, or ./config.yaml when it exists), defaults.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("source.file", "")
	v.SetDefault("source.format", "")
	v.SetDefault("source.timeout", 15*time.Second)
	v.SetDefault("server.port", 3000)
	v.SetDefault("log.level", "info")
	v.SetDefault("locale", "pt-BR")
	v.SetDefault("palette", []string(aggregate.DefaultPalette))
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Source.URL == "" && c.Source.File == "" {
		problems = append(problems, "either source.url or source.file must be set")
	}
	if _, err := source.ParseFormat(c.Source.Format); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Source.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid source timeout %v: must be positive", c.Source.Timeout))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	if len(c.Palette) == 0 {
		problems = append(problems, "palette must have at least one color")
	}
	for i, color := range c.Palette {
		if strings.TrimSpace(color) == "" {
			problems = append(problems, fmt.Sprintf("palette color %d is empty", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// LogLevel returns the configured level, Info when unset.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c *Config) MonthNames() aggregate.MonthNames {
	return aggregate.MonthNamesFor(c.Locale)
}

func (c *Config) ColorPalette() aggregate.Palette {
	return aggregate.Palette(c.Palette)
}

func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Server.Port)
}

// NewSource builds the spreadsheet source. A local file takes precedence
// over the URL.
func (c *Config) NewSource(logger *log.Logger) (source.Source, error) {
	format, err := source.ParseFormat(c.Source.Format)
	if err != nil {
		return nil, err
	}
	if c.Source.File != "" {
		return source.NewFile(c.Source.File, format, logger), nil
	}
	return source.NewHTTP(c.Source.URL, format, c.Source.Timeout, logger), nil
}
