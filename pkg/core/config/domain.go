package config

import (
	"fmt"
	"os"
)

// DomainConfig collects every environment- and Vault-sourced setting
// cmd/git-domain-service needs to boot.
type DomainConfig struct {
	NatsURL         string
	VaultAddr       string
	VaultToken      string
	VaultSecretPath string
	RedisAddr       string
	HTTPAddr        string
	ServiceName     string
	ServiceVersion  string
	ProjectionGroup string
	LagSweepCron    string
	AnalyticsCron   string
}

// LoadDomainConfig reads cmd/git-domain-service's settings from the
// environment, applying the same fallback defaults the teacher's service
// mains use for local development.
func LoadDomainConfig() DomainConfig {
	return DomainConfig{
		NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
		VaultAddr:       getEnv("VAULT_ADDR", "http://localhost:8200"),
		VaultToken:      getEnv("VAULT_TOKEN", "root"),
		VaultSecretPath: getEnv("VAULT_SECRET_PATH", "secret/data/arc/git-domain-service"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ServiceName:     getEnv("SERVICE_NAME", "git-domain"),
		ServiceVersion:  getEnv("SERVICE_VERSION", "0.1.0"),
		ProjectionGroup: getEnv("PROJECTION_GROUP", "git_domain"),
		LagSweepCron:    getEnv("LAG_SWEEP_CRON", "*/1 * * * *"),
		AnalyticsCron:   getEnv("ANALYTICS_CRON", "0 */6 * * *"),
	}
}

// ApplyVaultOverrides fetches the KV2 secret at cfg.VaultSecretPath and
// overrides any matching string fields (NATS_URL, REDIS_ADDR) found
// there, following the same Vault-then-env precedence the teacher's
// service mains use. A missing Vault server is non-fatal: callers fall
// back to the environment-derived defaults already in cfg.
func (cfg *DomainConfig) ApplyVaultOverrides() error {
	manager, err := NewSecretManager(cfg.VaultAddr, cfg.VaultToken)
	if err != nil {
		return fmt.Errorf("vault connection failed: %w", err)
	}

	secrets, err := manager.GetKV2(cfg.VaultSecretPath)
	if err != nil {
		return fmt.Errorf("failed to load secrets from %s: %w", cfg.VaultSecretPath, err)
	}

	if url, ok := secrets["NATS_URL"].(string); ok && url != "" {
		cfg.NatsURL = url
	}
	if addr, ok := secrets["REDIS_ADDR"].(string); ok && addr != "" {
		cfg.RedisAddr = addr
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
