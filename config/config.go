package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/matijaslevang/spotminify/redact"
)

const TokenEnvVar = "SPOTMINIFY_TOKEN"

type Config struct {
	API     API     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	Offline Offline `yaml:"offline"`
	Upload  Upload  `yaml:"upload"`
	Session Session `yaml:"session"`
	Log     Log     `yaml:"log"`
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("api", c.API.ToDict()).
		Dict("storage", c.Storage.ToDict()).
		Dict("offline", c.Offline.ToDict()).
		Dict("upload", c.Upload.ToDict()).
		Dict("session", c.Session.ToDict()).
		Dict("log", c.Log.ToDict())
}

func (c *Config) setDefaults() {
	c.API.setDefaults()
	c.Storage.setDefaults()
	c.Offline.setDefaults()
	c.Upload.setDefaults()
	c.Session.setDefaults()
	c.Log.setDefaults()
}

func (c *Config) validate() error {
	if err := c.API.validate(); nil != err {
		return fmt.Errorf("api config validation failed: %v", err)
	}

	if err := c.Storage.validate(); nil != err {
		return fmt.Errorf("storage config validation failed: %v", err)
	}

	if err := c.Offline.validate(); nil != err {
		return fmt.Errorf("offline config validation failed: %v", err)
	}

	if err := c.Upload.validate(); nil != err {
		return fmt.Errorf("upload config validation failed: %v", err)
	}

	if err := c.Session.validate(); nil != err {
		return fmt.Errorf("session config validation failed: %v", err)
	}

	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	return nil
}

type API struct {
	BaseURL   string       `yaml:"base_url"`
	Timeouts  APITimeouts  `yaml:"timeouts"`
	RateLimit APIRateLimit `yaml:"rate_limit"`
	Proxy     Proxy        `yaml:"proxy"`
}

func (c *API) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("base_url", c.BaseURL).
		Dict("timeouts", c.Timeouts.ToDict()).
		Dict("rate_limit", c.RateLimit.ToDict()).
		Dict("proxy", c.Proxy.ToDict())
}

func (c *API) setDefaults() {
	c.Timeouts.setDefaults()
	c.RateLimit.setDefaults()
}

func (c *API) validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}

	if u, err := url.Parse(c.BaseURL); nil != err {
		return fmt.Errorf("base_url is not a valid URL: %v", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got: %s", u.Scheme)
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	if err := c.RateLimit.validate(); nil != err {
		return fmt.Errorf("rate_limit config validation failed: %v", err)
	}

	if err := c.Proxy.validate(); nil != err {
		return fmt.Errorf("proxy config validation failed: %v", err)
	}

	return nil
}

// APITimeouts are in seconds. Zero leaves the transport default in place.
type APITimeouts struct {
	Presign int `yaml:"presign"`
	Commit  int `yaml:"commit"`
	Lookup  int `yaml:"lookup"`
}

func (c *APITimeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("presign", c.Presign).
		Int("commit", c.Commit).
		Int("lookup", c.Lookup)
}

func (c *APITimeouts) setDefaults() {
	if c.Lookup == 0 {
		c.Lookup = 10
	}
}

func (c *APITimeouts) validate() error {
	if c.Presign < 0 {
		return errors.New("presign must not be negative")
	}

	if c.Commit < 0 {
		return errors.New("commit must not be negative")
	}

	if c.Lookup < 0 {
		return errors.New("lookup must not be negative")
	}

	return nil
}

type APIRateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func (c *APIRateLimit) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Float64("per_second", c.PerSecond).
		Int("burst", c.Burst)
}

func (c *APIRateLimit) setDefaults() {
	if c.PerSecond == 0 {
		c.PerSecond = 5
	}

	if c.Burst == 0 {
		c.Burst = 5
	}
}

func (c *APIRateLimit) validate() error {
	if c.PerSecond < 0 {
		return errors.New("per_second must be greater than 0")
	}

	if c.Burst < 0 {
		return errors.New("burst must be greater than 0")
	}

	return nil
}

type Proxy struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (c *Proxy) Enabled() bool {
	return len(c.Host) > 0 && c.Port > 0
}

func (c *Proxy) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("host", c.Host).
		Int("port", c.Port).
		Str("username", c.Username).
		Str("password", redact.String(c.Password))
}

func (c *Proxy) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", c.Port)
	}

	if len(c.Host) > 0 && c.Port == 0 {
		return errors.New("port is required when host is set")
	}

	return nil
}

type Storage struct {
	// PutTimeout is in seconds. Zero leaves the transport default in place.
	PutTimeout int `yaml:"put_timeout"`
}

func (c *Storage) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("put_timeout", c.PutTimeout)
}

func (c *Storage) setDefaults() {}

func (c *Storage) validate() error {
	if c.PutTimeout < 0 {
		return errors.New("put_timeout must not be negative")
	}

	return nil
}

type Offline struct {
	DBPath          string `yaml:"db_path"`
	PlaybackDir     string `yaml:"playback_dir"`
	DownloadTimeout int    `yaml:"download_timeout"`
}

func (c *Offline) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("db_path", c.DBPath).
		Str("playback_dir", c.PlaybackDir).
		Int("download_timeout", c.DownloadTimeout)
}

func (c *Offline) setDefaults() {
	if c.DBPath == "" {
		c.DBPath = "offline-audio.db"
	}

	if c.PlaybackDir == "" {
		c.PlaybackDir = os.TempDir()
	}
}

func (c *Offline) validate() error {
	if c.DownloadTimeout < 0 {
		return errors.New("download_timeout must not be negative")
	}

	if i, err := os.Stat(c.PlaybackDir); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("playback_dir does not exist")
		}

		return fmt.Errorf("failed to stat playback_dir: %v", err)
	} else if !i.IsDir() {
		return errors.New("playback_dir must be a directory")
	}

	return nil
}

type Upload struct {
	Parallelism  int    `yaml:"parallelism"`
	MaxAudioSize uint64 `yaml:"max_audio_size"`
	MaxImageSize uint64 `yaml:"max_image_size"`
}

func (c *Upload) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("parallelism", c.Parallelism).
		Str("max_audio_size", humanize.IBytes(c.MaxAudioSize)).
		Str("max_image_size", humanize.IBytes(c.MaxImageSize))
}

func (c *Upload) setDefaults() {
	if c.Parallelism == 0 {
		c.Parallelism = 1
	}

	if c.MaxAudioSize == 0 {
		c.MaxAudioSize = 500 * humanize.MiByte
	}

	if c.MaxImageSize == 0 {
		c.MaxImageSize = 20 * humanize.MiByte
	}
}

func (c *Upload) validate() error {
	if c.Parallelism < 0 {
		return errors.New("parallelism must be greater than 0")
	}

	return nil
}

type Session struct {
	Token     string `yaml:"-"`
	TokenFile string `yaml:"token_file"`
}

func (c *Session) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("token", redact.String(c.Token)).
		Str("token_file", c.TokenFile)
}

func (c *Session) setDefaults() {
	if c.TokenFile == "" {
		c.TokenFile = "token.json"
	}
}

func (c *Session) validate() error {
	return nil
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = lo.Ternary(isatty.IsTerminal(os.Stderr.Fd()), "pretty", "json")
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: trace, debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty"}, c.Format) {
		return fmt.Errorf("format must be 'json' or 'pretty', got: %s", c.Format)
	}

	return nil
}

// Seconds converts a config timeout to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func Load(filename string) (*Config, error) {
	filename = lo.Ternary(len(filename) > 0, filename, "config.yaml")
	data, err := os.ReadFile(filename)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %s: %v", filename, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(data, &conf); nil != err {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	conf.Session.Token = os.Getenv(TokenEnvVar)
	conf.setDefaults()

	if err := conf.validate(); nil != err {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return &conf, nil
}
