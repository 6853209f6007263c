package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BaseAPIEnv overrides base_url, same role as VUE_APP_BASE_API in the web client.
const BaseAPIEnv = "AUTOWRITER_BASE_API"

const (
	DefaultTimeout          = "30s"
	DefaultNotifyDuration   = "5s"
	DefaultNotifyMessage    = "请求失败"
	DefaultImageCacheExpire = "5m"
	DefaultWorkers          = 4
)

var GConfig *Config

func Load(filePath, envFile string) (*Config, error) {
	cfg := &Config{}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err = yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", filePath, err)
			}
		}
	}
	loadEnvFile(envFile)
	if v, ok := os.LookupEnv(BaseAPIEnv); ok {
		cfg.BaseURL = v
	}
	cfg.FullWithDefault()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(envFile string) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	// godotenv.Load never overrides variables already set in the environment
	_ = godotenv.Load(envFile)
}

type Config struct {
	BaseURL           string `yaml:"base_url"`
	Timeout           string `yaml:"timeout"`
	CheckResponseCode bool   `yaml:"check_response_code"`
	Workers           int    `yaml:"workers"`
	Notify            `yaml:"notify"`
	ImageCache        `yaml:"image_cache"`
	Log               `yaml:"log"`
	AliOss            `yaml:"ali_oss"`
}

type Notify struct {
	Duration       string `yaml:"duration"`
	DefaultMessage string `yaml:"default_message"`
}

type ImageCache struct {
	Expiration string `yaml:"expiration"`
}

type Log struct {
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	LogMaxSize    int    `yaml:"log_max_size"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAge     int    `yaml:"log_max_age"`
}

type AliOss struct {
	AccessKeyId     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Directory       string `yaml:"directory"`
}

// Enabled reports whether fetched images should be archived to OSS.
func (a AliOss) Enabled() bool {
	return a.Bucket != "" && a.Endpoint != ""
}

func (c *Config) FullWithDefault() {
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if c.Notify.Duration == "" {
		c.Notify.Duration = DefaultNotifyDuration
	}
	if c.Notify.DefaultMessage == "" {
		c.Notify.DefaultMessage = DefaultNotifyMessage
	}
	if c.ImageCache.Expiration == "" {
		c.ImageCache.Expiration = DefaultImageCacheExpire
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

func (c *Config) Verify() error {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err = time.ParseDuration(c.Notify.Duration); err != nil {
		return fmt.Errorf("invalid notify.duration: %w", err)
	}
	if _, err = time.ParseDuration(c.ImageCache.Expiration); err != nil {
		return fmt.Errorf("invalid image_cache.expiration: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// The getters below are only valid after Verify succeeded.

func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) NotifyDuration() time.Duration {
	d, _ := time.ParseDuration(c.Notify.Duration)
	return d
}

func (c *Config) ImageCacheExpiration() time.Duration {
	d, _ := time.ParseDuration(c.ImageCache.Expiration)
	return d
}
