// Package config loads nearby-events settings from a YAML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/nearby-events/internal/finder"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/source"
)

// Environment variables overriding the file settings
const (
	EnvSource         = "NEARBY_EVENTS_SOURCE"
	EnvListen         = "NEARBY_EVENTS_LISTEN"
	EnvLogLevel       = "NEARBY_EVENTS_LOG_LEVEL"
	EnvMinioEndpoint  = "MINIO_ENDPOINT"
	EnvMinioAccessKey = "MINIO_ACCESS_KEY"
	EnvMinioSecretKey = "MINIO_SECRET_KEY"
	EnvMinioUseSSL    = "MINIO_USE_SSL"
)

type Server struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type Source struct {
	Location  string        `yaml:"location"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	S3        S3            `yaml:"s3"`
}

type Search struct {
	RadiusKm      float64       `yaml:"radius_km"`
	NearMeTimeout time.Duration `yaml:"near_me_timeout"`
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
	InitialLimit  int           `yaml:"initial_limit"`
	IPLocateURL   string        `yaml:"ip_locate_url"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server Server `yaml:"server"`
	Source Source `yaml:"source"`
	Search Search `yaml:"search"`
	Log    Log    `yaml:"log"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Server: Server{
			ListenAddress:   ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Source: Source{
			Location:  "./data/events.json",
			Timeout:   source.Timeout,
			UserAgent: source.UserAgent,
		},
		Search: Search{
			RadiusKm:      10,
			NearMeTimeout: finder.DefaultNearMeTimeout,
			SubmitTimeout: finder.DefaultSubmitTimeout,
			InitialLimit:  finder.DefaultInitialLimit,
			IPLocateURL:   finder.DefaultIPLocateURL,
		},
		Log: Log{
			Level: string(logger.LevelInfo),
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Keys missing from the file keep their defaults
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv loads variables from .env files into the process environment.
// Missing files are not an error; variables already set are never overwritten.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("No .env file found, using the environment as is", logger.Fields{"files": files})
	}
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvSource); ok {
		c.Source.Location = v
	}
	if v, ok := lookup(EnvListen); ok {
		c.Server.ListenAddress = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvMinioEndpoint); ok {
		c.Source.S3.Endpoint = v
	}
	if v, ok := lookup(EnvMinioAccessKey); ok {
		c.Source.S3.AccessKey = v
	}
	if v, ok := lookup(EnvMinioSecretKey); ok {
		c.Source.S3.SecretKey = v
	}
	if v, ok := lookup(EnvMinioUseSSL); ok {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMinioUseSSL, err)
		}
		c.Source.S3.UseSSL = useSSL
	}
	return nil
}

// lookup returns a non-empty, trimmed environment variable
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate checks the settings that cannot be corrected silently
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Source.Location) == "" {
		errs = append(errs, errors.New("source.location must not be empty"))
	}
	if r := c.Search.RadiusKm; math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		errs = append(errs, fmt.Errorf("search.radius_km must be a non-negative number, got %v", r))
	}
	if c.Search.InitialLimit < 0 {
		errs = append(errs, fmt.Errorf("search.initial_limit must not be negative, got %d", c.Search.InitialLimit))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// SourceOptions returns the fetcher options for the configured source
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Timeout:   c.Source.Timeout,
		UserAgent: c.Source.UserAgent,
		S3: source.S3Options{
			Endpoint:  c.Source.S3.Endpoint,
			AccessKey: c.Source.S3.AccessKey,
			SecretKey: c.Source.S3.SecretKey,
			UseSSL:    c.Source.S3.UseSSL,
		},
	}
}

// FinderConfig returns the search flow settings
func (c *Config) FinderConfig() finder.Config {
	return finder.Config{
		NearMeTimeout: c.Search.NearMeTimeout,
		SubmitTimeout: c.Search.SubmitTimeout,
		InitialLimit:  c.Search.InitialLimit,
	}
}

// LogLevel returns the validated log level
func (c *Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}
