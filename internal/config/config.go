// Package config loads the target's runtime configuration: listening
// transports, session/queue sizing policy, logging, and metrics.
//
// Grounded on the teacher's pkg/config/config.go + defaults.go: a
// viper-backed Config struct with layered precedence (CLI flags > env
// vars > config file > defaults), mapstructure tags, and a
// time.Duration decode hook. The NVMe-oF session core has far fewer
// config surfaces than the teacher's full NFS/SMB server (no database,
// control-plane API, or Kerberos), so this is a narrow adaptation
// rather than a line-for-line port.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// TargetConfig is the root configuration for the nvmfd target process.
type TargetConfig struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Transports []TransportConfig `mapstructure:"transports" yaml:"transports"`
	Subsystems []SubsystemConfig `mapstructure:"subsystems" yaml:"subsystems"`
}

// LoggingConfig controls logging behavior, mirroring the teacher's
// LoggingConfig field-for-field.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// SessionConfig holds the session/queue sizing policy that the
// original source compiled in as NVMF_H2C_MAX_MSG/NVMF_C2H_MAX_MSG/
// SPDK_NVMF_DEFAULT_MAX_QUEUE_DEPTH/SPDK_NVMF_MAX_RECV_DATA_TRANSFER_SIZE
// and g_nvmf_tgt.max_queues_per_session, made runtime-configurable per
// SPEC_FULL.md §2.2.
type SessionConfig struct {
	MaxQueuesPerSession  int           `mapstructure:"max_queues_per_session" yaml:"max_queues_per_session"`
	DefaultMaxQueueDepth int           `mapstructure:"default_max_queue_depth" yaml:"default_max_queue_depth"`
	H2CMaxMsg            int           `mapstructure:"h2c_max_msg" yaml:"h2c_max_msg"`
	C2HMaxMsg            int           `mapstructure:"c2h_max_msg" yaml:"c2h_max_msg"`
	MaxRecvDataXfer      int           `mapstructure:"max_recv_data_xfer" yaml:"max_recv_data_xfer"`
	PollInterval         time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// TransportConfig describes one transport to start: its registry name
// (e.g. "tcp") and listen address.
type TransportConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// SubsystemConfig provisions one subsystem at startup: its NQN and
// subtype (discovery or nvm). The original source treats subsystem
// provisioning as an administrative surface external to the session
// core; this target needs a minimal in-tree equivalent to run Connect
// end-to-end without one, per SPEC_FULL.md §5.
type SubsystemConfig struct {
	NQN     string `mapstructure:"nqn" yaml:"nqn"`
	Subtype string `mapstructure:"subtype" yaml:"subtype"` // "discovery" or "nvm"
}

// Load loads configuration from defaults, an optional YAML file, and
// NVMF_-prefixed environment variables, in ascending precedence order.
// An environment variable overrides only a key the config file sets;
// when no config file is found, the defaults are returned and the
// environment is not consulted.
func Load(configPath string) (*TargetConfig, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if !found {
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NVMF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	v.SetConfigFile(configPath)
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read file: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// DefaultConfigPath returns the conventional on-disk config location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nvmfd.yaml"
	}
	return filepath.Join(dir, "nvmfd", "config.yaml")
}
