package broadcast

import (
	"testing"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueConfig(t *testing.T) {
	t.Run("DefaultFavorsQuickFailure", func(t *testing.T) {
		cfg := DefaultQueueConfig()
		assert.Equal(t, 5, cfg.MaxWorkers)
		assert.Equal(t, 10, cfg.MaxRetries)
	})

	t.Run("DevelopmentFailsFaster", func(t *testing.T) {
		dev := DevelopmentQueueConfig()
		def := DefaultQueueConfig()
		assert.Less(t, dev.MaxRetries, def.MaxRetries)
		assert.Less(t, dev.MaxWorkers, def.MaxWorkers)
	})

	t.Run("EnvironmentSelection", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		assert.Equal(t, DevelopmentQueueConfig().MaxRetries, GetQueueConfig().MaxRetries)

		t.Setenv("APP_ENV", "")
		assert.Equal(t, DefaultQueueConfig().MaxRetries, GetQueueConfig().MaxRetries)
	})

	t.Run("RiverQueueConfig", func(t *testing.T) {
		queues := DefaultQueueConfig().RiverQueueConfig()
		require.Contains(t, queues, river.QueueDefault)
		assert.Equal(t, 5, queues[river.QueueDefault].MaxWorkers)
	})
}

func TestMessageSavedArgsKind(t *testing.T) {
	assert.Equal(t, "chat_broadcast", MessageSavedArgs{}.Kind())
}
