package config

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/tokengate/tokengate/pkg/logger"
)

const envPrefix = "TOKENGATE"

// Load reads the configuration from file and environment. Explicit path ""
// searches the usual locations. The environment overrides the file with
// TOKENGATE_ prefixed variables, e.g. TOKENGATE_SERVER_PORT.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/tokengate/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, v, nil
}

// WatchLogLevel re-reads log.level on config file changes and applies it
// through setLevel. Only the level is hot-reloadable; everything else needs
// a restart.
func WatchLogLevel(ctx context.Context, v *viper.Viper, setLevel func(level string), log logger.Logger) {
	v.OnConfigChange(func(event fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			log.Warn(ctx, "config reload failed", logger.Error(err))
			return
		}
		level := v.GetString("log.level")
		setLevel(level)
		log.Info(ctx, "log level reloaded",
			logger.String("level", level),
			logger.String("file", event.Name),
		)
	})
	v.WatchConfig()
}

// secondsToDurationHook decodes a bare number into a duration field as
// seconds, so `access_expire: 1800` and `access_expire: 30m` mean the same
// thing. Values carrying a unit fall through to the standard duration hook.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		switch value := data.(type) {
		case int:
			return time.Duration(value) * time.Second, nil
		case int64:
			return time.Duration(value) * time.Second, nil
		case float64:
			return time.Duration(value * float64(time.Second)), nil
		case string:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				return time.Duration(n) * time.Second, nil
			}
		}
		return data, nil
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("auth.app_name", "tokengate")
	v.SetDefault("auth.mode", "refresh")
	v.SetDefault("auth.access_expire", "30m")
	v.SetDefault("auth.refresh_expire", "720h")
	v.SetDefault("auth.access_unique", true)
	v.SetDefault("auth.access_valid", true)
	v.SetDefault("auth.token_carrier", "header")
	v.SetDefault("auth.token_key", "Authorization")
	v.SetDefault("auth.always_success_status", false)

	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.pool_size", 50)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "tokengate.db")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "tokengate.audit")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "tokengate")
	v.SetDefault("tracing.sampling_rate", 0.1)
}
