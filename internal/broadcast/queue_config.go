/*
Package broadcast configuration - tunable parameters for the notification
queue.

Notifications are small and cheap, so the defaults favor quick failure over
long retry windows: a notification that cannot be delivered within the retry
budget is dropped (the message itself is already persisted by the chat
service and is never affected).
*/
package broadcast

import (
	"os"
	"time"

	"github.com/riverqueue/river"
)

// QueueConfig holds the configurable parameters for the broadcast queue
type QueueConfig struct {
	// MaxWorkers is the number of concurrent workers delivering notifications
	MaxWorkers int

	// MaxRetries is the maximum delivery attempts per notification
	MaxRetries int

	// JobTimeout is the maximum time a single delivery can run
	JobTimeout time.Duration
}

// DefaultQueueConfig returns the default configuration
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		MaxWorkers: 5,
		MaxRetries: 10,
		JobTimeout: 30 * time.Second,
	}
}

// DevelopmentQueueConfig returns a configuration that fails fast
func DevelopmentQueueConfig() *QueueConfig {
	config := DefaultQueueConfig()
	config.MaxWorkers = 2
	config.MaxRetries = 3
	config.JobTimeout = 10 * time.Second
	return config
}

// GetQueueConfig returns the configuration for the current environment
func GetQueueConfig() *QueueConfig {
	if os.Getenv("APP_ENV") == "development" {
		return DevelopmentQueueConfig()
	}
	return DefaultQueueConfig()
}

// RiverQueueConfig converts the config to River's queue configuration format
func (c *QueueConfig) RiverQueueConfig() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		river.QueueDefault: {
			MaxWorkers: c.MaxWorkers,
		},
	}
}
