// Package config resolves run settings from defaults, an optional YAML file
// and FLEXVG_* environment variables. Flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go-simpler.org/env"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string `yaml:"log_level" env:"FLEXVG_LOG_LEVEL" usage:"debug, info, warn or error"`
	LogFormat  string `yaml:"log_format" env:"FLEXVG_LOG_FORMAT" usage:"text or json"`
	Format     string `yaml:"format" env:"FLEXVG_FORMAT" usage:"graph output format"`
	NoTrailing bool   `yaml:"no_trailing" env:"FLEXVG_NO_TRAILING" usage:"do not emit the region after the last variant"`
	Precheck   bool   `yaml:"precheck" env:"FLEXVG_PRECHECK" usage:"verify variant sequence order before construction"`
}

func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Format:    "msgpack",
		Precheck:  true,
	}
}

var ErrUnknownKey = errors.New("config: unknown key")

// Load returns Default overlaid with the YAML file at path (skipped when path
// is empty) and then the environment.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: %w", err)
		}
		if err := decodeYAML(b, &c); err != nil {
			return c, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := env.Load(&c, &env.Options{SliceSep: ","}); err != nil {
		return c, fmt.Errorf("config: environment: %w", err)
	}
	return c, c.Validate()
}

func decodeYAML(b []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Level maps LogLevel onto slog.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format %q: want text or json", c.LogFormat)
	}
	return nil
}

// Usage prints the environment variables Config reads.
func Usage(w io.Writer) {
	c := Default()
	env.Usage(&c, w, nil)
}
