package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the demo can be told from the config file,
// environment (CHARSETDEMO_*) or flags.
type Config struct {
	APIURL  string        `mapstructure:"api_url" validate:"required,url"`
	SJISAPI string        `mapstructure:"sjis_api" validate:"required"`
	UTF8API string        `mapstructure:"utf8_api" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Schema  []string      `mapstructure:"schema" validate:"min=1,dive,required"`
	Title   string        `mapstructure:"title"`

	RawEncoding       string `mapstructure:"raw_encoding" validate:"required"`
	TransportOverride string `mapstructure:"transport_override"`
	LibraryOverride   string `mapstructure:"library_override"`
	LibraryDisabled   bool   `mapstructure:"library_disabled"`

	Output        string `mapstructure:"output"`
	OutputCharset string `mapstructure:"output_charset" validate:"required"`
	Listen        string `mapstructure:"listen" validate:"required,hostname_port"`

	Log LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output"`
}

var (
	errNilFlags = errors.New("config: flag set is nil")
	validate    = validator.New()
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8000/api")
	v.SetDefault("sjis_api", "users-sjis")
	v.SetDefault("utf8_api", "users-utf8")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("schema", []string{"name"})
	v.SetDefault("title", "Shift_JIS decode comparison")

	v.SetDefault("raw_encoding", "shift_jis")
	v.SetDefault("transport_override", "")
	v.SetDefault("library_override", "")
	v.SetDefault("library_disabled", false)
	v.SetDefault("output", "-")
	v.SetDefault("output_charset", "utf-8")
	v.SetDefault("listen", "127.0.0.1:8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// AddFlags registers the flags Load binds. Dotted keys use dashes.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("api-url", "", "API endpoint")
	fs.String("sjis-api", "", "api parameter selecting the Shift_JIS payload")
	fs.String("utf8-api", "", "api parameter selecting the UTF-8 payload")
	fs.Duration("timeout", 0, "per request timeout")
	fs.StringSlice("schema", nil, "fields to show, in order")
	fs.String("raw-encoding", "", "encoding the raw path decodes with")
	fs.String("transport-override", "", "charset forced on the net/http path")
	fs.String("library-override", "", "charset forced on the req path")
	fs.Bool("library-disabled", false, "run the req path without a client")
	fs.StringP("output", "o", "", "where render writes the page, - for stdout")
	fs.String("output-charset", "", "page encoding: utf-8 or shift_jis")
	fs.String("listen", "", "serve address")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "json or console")
	fs.String("log-output", "", "stdout, stderr or a file path")
}

// Load builds a Config from defaults, the optional config file, the
// environment and fs, later sources winning. Only flags the user set
// override.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if fs == nil {
		return nil, errNilFlags
	}
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("charsetdemo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || !f.Changed {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if strings.HasPrefix(key, "log_") {
			key = "log." + strings.TrimPrefix(key, "log_")
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
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

// Validate checks field rules. Charset labels are checked where they are
// parsed.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
