package config

import (
	"strings"
	"time"
)

// Default session policy values, carried over from the original
// source's compile-time constants (NVMF_H2C_MAX_MSG, NVMF_C2H_MAX_MSG,
// SPDK_NVMF_DEFAULT_MAX_QUEUE_DEPTH,
// SPDK_NVMF_MAX_RECV_DATA_TRANSFER_SIZE) now expressed as defaults
// rather than #define's.
const (
	defaultMaxQueuesPerSession  = 64
	defaultDefaultMaxQueueDepth = 128
	defaultH2CMaxMsg            = 8192
	defaultC2HMaxMsg            = 8192
	defaultMaxRecvDataXfer      = 131072
	defaultPollInterval         = 10 * time.Millisecond
)

// DefaultConfig returns a TargetConfig populated entirely with default
// values, used when no config file is found.
func DefaultConfig() *TargetConfig {
	cfg := &TargetConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields of cfg, mirroring the
// teacher's ApplyDefaults dispatch-to-section-defaults shape.
func ApplyDefaults(cfg *TargetConfig) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applySessionDefaults(&cfg.Session)
	applyTransportDefaults(cfg)
	applySubsystemDefaults(cfg)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.MaxQueuesPerSession == 0 {
		cfg.MaxQueuesPerSession = defaultMaxQueuesPerSession
	}
	if cfg.DefaultMaxQueueDepth == 0 {
		cfg.DefaultMaxQueueDepth = defaultDefaultMaxQueueDepth
	}
	if cfg.H2CMaxMsg == 0 {
		cfg.H2CMaxMsg = defaultH2CMaxMsg
	}
	if cfg.C2HMaxMsg == 0 {
		cfg.C2HMaxMsg = defaultC2HMaxMsg
	}
	if cfg.MaxRecvDataXfer == 0 {
		cfg.MaxRecvDataXfer = defaultMaxRecvDataXfer
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
}

func applyTransportDefaults(cfg *TargetConfig) {
	if len(cfg.Transports) == 0 {
		cfg.Transports = []TransportConfig{{Name: "tcp", Addr: ":4420"}}
	}
}

// defaultDiscoveryNQN is the well-known Discovery Controller NQN defined
// by the base NVMe specification; every target provisions it unless the
// operator overrides the subsystems list entirely.
const defaultDiscoveryNQN = "nqn.2014-08.org.nvmexpress.discovery"

func applySubsystemDefaults(cfg *TargetConfig) {
	if len(cfg.Subsystems) == 0 {
		cfg.Subsystems = []SubsystemConfig{{NQN: defaultDiscoveryNQN, Subtype: "discovery"}}
	}
}
