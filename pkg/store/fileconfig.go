package store

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
)

// fileConfig is the standalone store-config file shape. Deployments that
// manage store credentials separately from the service config point
// store.config_path at one of these. Parsed with sigs.k8s.io/yaml, so the
// field names bind through JSON tags.
type fileConfig struct {
	Backend string            `json:"backend,omitempty"`
	Enabled *bool             `json:"enabled,omitempty"`
	Memory  *memoryFileConfig `json:"memory,omitempty"`
	Redis   *redisFileConfig  `json:"redis,omitempty"`
	MySQL   *mysqlFileConfig  `json:"mysql,omitempty"`
}

type memoryFileConfig struct {
	MaxRecords int `json:"max_records,omitempty"`
}

type redisFileConfig struct {
	Address     string `json:"address,omitempty"`
	PasswordEnv string `json:"password_env,omitempty"`
	DB          int    `json:"db,omitempty"`
	TTLHours    int    `json:"ttl_hours,omitempty"`
	KeyPrefix   string `json:"key_prefix,omitempty"`
}

type mysqlFileConfig struct {
	DSNEnv      string `json:"dsn_env,omitempty"`
	TablePrefix string `json:"table_prefix,omitempty"`
}

// resolveConfig merges an external store-config file into the inline
// configuration. Fields set in the file take precedence.
func resolveConfig(cfg config.StoreConfig) (config.StoreConfig, error) {
	if cfg.ConfigPath == "" {
		return cfg, nil
	}

	logging.Debugf("store: loading config from file: %s", cfg.ConfigPath)

	data, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read store config file %s: %w", cfg.ConfigPath, err)
	}

	var fileCfg fileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("failed to parse store config file %s: %w", cfg.ConfigPath, err)
	}

	if fileCfg.Backend != "" {
		cfg.Backend = fileCfg.Backend
	}
	if fileCfg.Enabled != nil {
		cfg.Enabled = *fileCfg.Enabled
	}
	if fileCfg.Memory != nil {
		if fileCfg.Memory.MaxRecords > 0 {
			cfg.Memory.MaxRecords = fileCfg.Memory.MaxRecords
		}
	}
	if fileCfg.Redis != nil {
		r := fileCfg.Redis
		if r.Address != "" {
			cfg.Redis.Address = r.Address
		}
		if r.PasswordEnv != "" {
			cfg.Redis.PasswordEnv = r.PasswordEnv
		}
		if r.DB != 0 {
			cfg.Redis.DB = r.DB
		}
		if r.TTLHours != 0 {
			cfg.Redis.TTLHours = r.TTLHours
		}
		if r.KeyPrefix != "" {
			cfg.Redis.KeyPrefix = r.KeyPrefix
		}
	}
	if fileCfg.MySQL != nil {
		m := fileCfg.MySQL
		if m.DSNEnv != "" {
			cfg.MySQL.DSNEnv = m.DSNEnv
		}
		if m.TablePrefix != "" {
			cfg.MySQL.TablePrefix = m.TablePrefix
		}
	}

	logging.Debugf("store: external config loaded (backend=%s)", cfg.Backend)

	return cfg, nil
}
