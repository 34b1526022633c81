package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-msgform/internal/logger"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "MSGFORM"

// FileName is the optional config file looked up in the config directory.
const FileName = "msgform.yaml"

// Config holds all configuration for the command.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// View holds the initial state applied to the property editor.
	View View `mapstructure:"view"`
}

// View is the initial presentation of a message.
type View struct {
	// Topic prefixes property URIs.
	Topic string `mapstructure:"topic" default:""`
	// ExpandAll expands every container before output.
	ExpandAll bool `mapstructure:"expand_all" default:"false"`
	// ReadOnly makes the whole tree read-only.
	ReadOnly bool `mapstructure:"read_only" default:"false"`
	// Hidden lists property paths or family names to hide.
	Hidden []string `mapstructure:"hidden" default:""`
	// Locked lists property paths or family names to make read-only.
	Locked []string `mapstructure:"locked" default:""`
	// Format is the snapshot encoding: yaml, json or html.
	Format string `mapstructure:"format" default:"yaml"`
	// Composites enables the single-widget editors for poses, vectors,
	// colors and geometries.
	Composites bool `mapstructure:"composites" default:"true"`
}

// Load reads configuration from dir: .env first, then msgform.yaml, then
// the environment.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}

	// A missing .env file is fine.
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")

	file := filepath.Join(dir, FileName)
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: stat %s: %w", file, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.View.Hidden = compact(cfg.View.Hidden)
	cfg.View.Locked = compact(cfg.View.Locked)
	return &cfg, nil
}

// bindValues walks the struct and registers every key with its `default`
// tag so AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}

// compact trims entries and drops empty ones; env values arrive as a single
// comma separated string.
func compact(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
