package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"findler.com/gateway/config/providers"
)

// ConfigManager manages configuration from different sources
type ConfigManager struct {
	configSource     string
	provider         providers.ConfigProvider
	fallbackProvider providers.ConfigProvider
}

// NewConfigManager creates a new configuration manager.
//
// CONFIG_SOURCE and CONFIG_SOURCE_CONFIG bootstrap the config system and are
// read directly from the environment since the manager isn't available yet.
func NewConfigManager() (*ConfigManager, error) {
	configSource := os.Getenv("CONFIG_SOURCE")
	if configSource == "" {
		configSource = "env-file"
	}

	var configSourceConfig map[string]interface{}
	if configSource != "env-file" {
		configSourceConfigStr := os.Getenv("CONFIG_SOURCE_CONFIG")
		if configSourceConfigStr != "" {
			if err := json.Unmarshal([]byte(configSourceConfigStr), &configSourceConfig); err != nil {
				return nil, fmt.Errorf("failed to parse CONFIG_SOURCE_CONFIG: %w", err)
			}
		}
	}

	factory := &providers.ProviderFactory{}

	providerConfig := providers.ProviderConfig{
		ProviderType: providers.ProviderType(configSource),
		Config:       configSourceConfig,
	}

	if err := factory.ValidateProviderConfig(providerConfig); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	provider, err := factory.NewProvider(providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	// Fallback provider is always env-file
	fallbackConfig := providers.ProviderConfig{
		ProviderType: providers.ProviderTypeEnvFile,
		Config:       make(map[string]interface{}),
	}

	fallbackProvider, err := factory.NewProvider(fallbackConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback provider: %w", err)
	}

	cm := &ConfigManager{
		configSource:     configSource,
		provider:         provider,
		fallbackProvider: fallbackProvider,
	}

	slog.Info("configuration manager initialized", "config_source", configSource)

	return cm, nil
}

// Get retrieves a configuration value with proper key normalization
func (cm *ConfigManager) Get(key string) string {
	ctx := context.Background()

	searchKey := cm.searchKey(key)

	value, err := cm.provider.Get(ctx, searchKey)
	if err != nil {
		// When the primary provider is env-file the fallback is also
		// env-file and would fail identically; skip it.
		if cm.configSource == "env-file" {
			return ""
		}

		slog.Debug("primary config provider failed, falling back to env-file",
			"key", key, "search_key", searchKey, "error", err)

		value, err = cm.fallbackProvider.Get(ctx, key)
		if err != nil {
			slog.Debug("fallback config provider failed", "key", key, "error", err)
			return ""
		}
	}

	return value
}

// GetWithDefault retrieves a configuration value with fallback
func (cm *ConfigManager) GetWithDefault(key, defaultValue string) string {
	ctx := context.Background()

	searchKey := cm.searchKey(key)

	value, err := cm.provider.Get(ctx, searchKey)
	if err != nil || value == "" {
		if cm.configSource == "env-file" {
			return defaultValue
		}

		value, err = cm.fallbackProvider.Get(ctx, key)
		if err != nil || value == "" {
			return defaultValue
		}
	}

	return value
}

// IsKeyVaultEnabled returns true if Azure Key Vault is the primary provider
func (cm *ConfigManager) IsKeyVaultEnabled() bool {
	return cm.configSource == "azure-keyvault"
}

// GetConfigSource returns the current configuration source
func (cm *ConfigManager) GetConfigSource() string {
	return cm.configSource
}

// searchKey normalizes keys based on the configuration source. Azure Key
// Vault doesn't support underscores in secret names; env vars use them.
func (cm *ConfigManager) searchKey(key string) string {
	if cm.configSource == "azure-keyvault" {
		return strings.ReplaceAll(key, "_", "-")
	}
	return key
}
