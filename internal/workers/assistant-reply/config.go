// internal/workers/assistant-reply/config.go
package assistantreply

import (
	"time"

	"estate-assistant/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg config.CamundaConfig) *Config {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Timeout:       timeout,
		MaxJobsActive: cfg.MaxJobsActive,
	}
}
