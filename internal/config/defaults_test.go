package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, defaultMaxQueuesPerSession, cfg.Session.MaxQueuesPerSession)
	assert.Equal(t, defaultPollInterval, cfg.Session.PollInterval)
	assert.Len(t, cfg.Transports, 1)
	assert.Equal(t, "tcp", cfg.Transports[0].Name)
	assert.Len(t, cfg.Subsystems, 1)
	assert.Equal(t, defaultDiscoveryNQN, cfg.Subsystems[0].NQN)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &TargetConfig{
		Logging: LoggingConfig{Level: "debug"},
		Session: SessionConfig{MaxQueuesPerSession: 16},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 16, cfg.Session.MaxQueuesPerSession)
	assert.Equal(t, defaultDefaultMaxQueueDepth, cfg.Session.DefaultMaxQueueDepth)
}
