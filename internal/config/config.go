// Package config defines the application configuration surface and its
// loader.
package config

import (
	"fmt"
	"time"

	"github.com/tokengate/tokengate/internal/infrastructure/audit"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/infrastructure/persistence/redis"
	"github.com/tokengate/tokengate/internal/infrastructure/principal"
	"github.com/tokengate/tokengate/internal/infrastructure/secrets"
	"github.com/tokengate/tokengate/pkg/constants"
)

// Config is the root of the application configuration.
type Config struct {
	Server   ServerConfig             `mapstructure:"server"`
	Auth     AuthConfig               `mapstructure:"auth"`
	Redis    redis.Config             `mapstructure:"redis"`
	Database principal.DatabaseConfig `mapstructure:"database"`
	Vault    secrets.VaultConfig      `mapstructure:"vault"`
	Kafka    audit.KafkaConfig        `mapstructure:"kafka"`
	Log      LogConfig                `mapstructure:"log"`
	Tracing  monitoring.TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnablePprof     bool          `mapstructure:"enable_pprof"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds the token protocol settings.
type AuthConfig struct {
	// AppName prefixes every session key, isolating this deployment.
	AppName string `mapstructure:"app_name"`

	// Mode is "access" for stand-alone tokens or "refresh" for rotating
	// pairs.
	Mode string `mapstructure:"mode"`

	AccessExpire  time.Duration `mapstructure:"access_expire"`
	RefreshExpire time.Duration `mapstructure:"refresh_expire"`

	// Static signing secrets; ignored when vault is enabled.
	AccessSecret  string `mapstructure:"access_secret"`
	RefreshSecret string `mapstructure:"refresh_secret"`

	// AccessUnique allows at most one live session per account.
	AccessUnique bool `mapstructure:"access_unique"`

	// AccessValid persists server-side records; false means purely
	// stateless tokens.
	AccessValid bool `mapstructure:"access_valid"`

	// TokenCarrier is "header" or "cookie".
	TokenCarrier string `mapstructure:"token_carrier"`

	// TokenKey is the header or cookie name carrying the token.
	TokenKey string `mapstructure:"token_key"`

	// AlwaysSuccessStatus remaps every auth failure to HTTP 200 with the
	// failure detail in the body.
	AlwaysSuccessStatus bool `mapstructure:"always_success_status"`

	// OAuthAppID pins the deployment to one external application.
	OAuthAppID string `mapstructure:"oauth_app_id"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate rejects configurations the server cannot safely start with.
func (c *Config) Validate() error {
	if c.Auth.AppName == "" {
		return fmt.Errorf("auth.app_name must be set")
	}
	if c.Auth.Mode != string(constants.ModeAccess) && c.Auth.Mode != string(constants.ModeRefresh) {
		return fmt.Errorf("auth.mode must be %q or %q, got %q", constants.ModeAccess, constants.ModeRefresh, c.Auth.Mode)
	}
	if c.Auth.AccessExpire <= 0 {
		return fmt.Errorf("auth.access_expire must be positive")
	}
	if c.Auth.Mode == string(constants.ModeRefresh) && c.Auth.RefreshExpire <= c.Auth.AccessExpire {
		return fmt.Errorf("auth.refresh_expire must exceed auth.access_expire")
	}
	if !c.Vault.Enabled && (c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "") {
		return fmt.Errorf("auth.access_secret and auth.refresh_secret must be set when vault is disabled")
	}
	if !c.Vault.Enabled && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("auth.access_secret and auth.refresh_secret must differ")
	}
	switch c.Auth.TokenCarrier {
	case "", string(constants.CarrierHeader), string(constants.CarrierCookie):
	default:
		return fmt.Errorf("auth.token_carrier must be %q or %q", constants.CarrierHeader, constants.CarrierCookie)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
