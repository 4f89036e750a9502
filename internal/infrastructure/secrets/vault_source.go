// Package secrets resolves the token signing secrets, from HashiCorp Vault
// when enabled and from static configuration otherwise.
package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/tokengate/tokengate/pkg/logger"
)

// VaultConfig locates the signing secret material in a KV v2 mount.
type VaultConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Address    string `json:"address" yaml:"address" mapstructure:"address"`
	Token      string `json:"token" yaml:"token" mapstructure:"token"`
	Mount      string `json:"mount" yaml:"mount" mapstructure:"mount"`
	SecretPath string `json:"secret_path" yaml:"secret_path" mapstructure:"secret_path"`
}

// SigningSecrets is the resolved pair of HMAC secrets.
type SigningSecrets struct {
	AccessSecret  string
	RefreshSecret string
}

// Resolve returns the signing secrets. Vault wins when enabled; the static
// values only back local and test runs.
func Resolve(ctx context.Context, cfg VaultConfig, staticAccess, staticRefresh string, log logger.Logger) (*SigningSecrets, error) {
	if !cfg.Enabled {
		if staticAccess == "" || staticRefresh == "" {
			return nil, fmt.Errorf("signing secrets missing: configure auth.access_secret and auth.refresh_secret or enable vault")
		}
		return &SigningSecrets{AccessSecret: staticAccess, RefreshSecret: staticRefresh}, nil
	}

	client, err := vault.NewClient(&vault.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}
	secret, err := client.KVv2(mount).Get(ctx, cfg.SecretPath)
	if err != nil {
		return nil, fmt.Errorf("read signing secrets from vault: %w", err)
	}

	accessSecret, ok := secret.Data["access_secret"].(string)
	if !ok || accessSecret == "" {
		return nil, fmt.Errorf("vault secret %q missing access_secret", cfg.SecretPath)
	}
	refreshSecret, ok := secret.Data["refresh_secret"].(string)
	if !ok || refreshSecret == "" {
		return nil, fmt.Errorf("vault secret %q missing refresh_secret", cfg.SecretPath)
	}

	log.Info(ctx, "signing secrets loaded from vault",
		logger.String("mount", mount),
		logger.String("path", cfg.SecretPath),
	)
	return &SigningSecrets{AccessSecret: accessSecret, RefreshSecret: refreshSecret}, nil
}
