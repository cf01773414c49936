package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "SPAREPARTS_"

// Config is the full runtime configuration of the catalog service.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Data      DataConfig      `mapstructure:"data"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
	// Proxies are trusted to report the client address in X-Forwarded-For; comma separated
	// in the environment. Empty trusts none.
	Proxies []string `mapstructure:"proxies"`
}

type DataConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	Origin string `mapstructure:"origin"`
}

// RateLimitConfig limits requests per client IP. RPM 0 disables limiting.
type RateLimitConfig struct {
	RPM   int `mapstructure:"rpm"`
	Burst int `mapstructure:"burst"`
}

// CacheConfig bounds the query result cache. Size 0 disables caching.
type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 3000},
		Data:      DataConfig{Path: "./LE.csv"},
		Log:       LogConfig{Level: "INFO", Format: "text"},
		CORS:      CORSConfig{Origin: "*"},
		RateLimit: RateLimitConfig{RPM: 0, Burst: 20},
		Cache:     CacheConfig{Size: 256},
	}
}

// Load builds the configuration from defaults, an optional .env file in the working directory,
// and SPAREPARTS_ prefixed environment variables, in increasing priority.
// SPAREPARTS_HTTP_PORT maps to http.port, SPAREPARTS_RATELIMIT_RPM to ratelimit.rpm.
func Load() (Config, error) {
	return load(".env", os.Environ())
}

func load(envFile string, environ []string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// The file is optional.
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	// Keys from the .env file arrive as "spareparts_http_port"; fold them into dotted keys.
	for _, key := range v.AllKeys() {
		if prop, ok := propertyKey(key); ok {
			v.Set(prop, v.Get(key))
		}
	}

	for _, envStr := range environ {
		key, value, found := strings.Cut(envStr, "=")
		if !found {
			continue
		}
		if prop, ok := propertyKey(key); ok {
			v.Set(prop, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// propertyKey turns SPAREPARTS_HTTP_PORT into http.port.
func propertyKey(envKey string) (string, bool) {
	upper := strings.ToUpper(envKey)
	if !strings.HasPrefix(upper, EnvPrefix) {
		return "", false
	}
	prop := strings.ToLower(strings.TrimPrefix(upper, EnvPrefix))
	prop = strings.TrimPrefix(strings.ReplaceAll(prop, "_", "."), ".")
	return prop, prop != ""
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("cors.origin", d.CORS.Origin)
	v.SetDefault("ratelimit.rpm", d.RateLimit.RPM)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)
	v.SetDefault("cache.size", d.Cache.Size)
}
