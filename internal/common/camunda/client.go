// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"estate-assistant/internal/common/logger"
)

// Client wraps the Zeebe gRPC client with a connection check on startup.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	ConnectAttempts        uint
	RetryDelay             time.Duration
}

func DefaultClientConfig(address string) *ClientConfig {
	return &ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		ConnectAttempts:        10,
		RetryDelay:             2 * time.Second,
	}
}

// Connect creates the Zeebe client and waits until the broker answers a
// topology request, backing off between attempts.
func Connect(ctx context.Context, config *ClientConfig, log logger.Logger) (*Client, error) {
	var zeebeClient zbc.Client
	err := retry.Do(
		func() error {
			c, err := zbc.NewClient(&zbc.ClientConfig{
				GatewayAddress:         config.GatewayAddress,
				UsePlaintextConnection: config.UsePlaintextConnection,
			})
			if err != nil {
				return fmt.Errorf("create zeebe client: %w", err)
			}

			checkCtx, cancel := context.WithTimeout(ctx, config.ConnectionTimeout)
			defer cancel()
			if _, err := c.NewTopologyCommand().Send(checkCtx); err != nil {
				_ = c.Close()
				return fmt.Errorf("connect to zeebe broker at %s: %w", config.GatewayAddress, err)
			}
			zeebeClient = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(config.ConnectAttempts),
		retry.Delay(config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryableZeebeError),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("zeebe connection failed, retrying", map[string]interface{}{
				"attempt": n + 1,
				"error":   err.Error(),
			})
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Client{client: zeebeClient, config: config}, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the broker for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// IsRetryableZeebeError reports whether err looks like a transient transport failure.
func IsRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
