package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgconfig "github.com/abirbhav/Dining-Concierge-Chatbot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setNotifierEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ES_BASE_URL", "https://search.example.com")
	t.Setenv("ES_INDEX", "restaurants")
	t.Setenv("ES_USERNAME", "elastic")
	t.Setenv("ES_PASSWORD", "secret")
	t.Setenv("SES_SOURCE_ADDRESS", "concierge@example.com")
	t.Setenv("SES_OPERATOR_ADDRESS", "operator@example.com")
}

func TestLoadRelayConfig(t *testing.T) {
	t.Run("missing lex settings", func(t *testing.T) {
		var cfg RelayConfig
		err := Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, pkgconfig.ErrConfiguration)
		assert.Contains(t, err.Error(), "BOT_NAME")
	})

	t.Run("all settings present", func(t *testing.T) {
		t.Setenv("BOT_NAME", "DiningConcierge")
		t.Setenv("BOT_ALIAS", "prod")
		t.Setenv("USER_ID", "web-client")

		var cfg RelayConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, "DiningConcierge", cfg.Lex.BotName)
		assert.Equal(t, "prod", cfg.Lex.BotAlias)
		assert.Equal(t, "web-client", cfg.Lex.UserID)
		assert.Equal(t, "info", cfg.LogLevel)
	})
}

func TestLoadFulfillmentConfig(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(t *testing.T, cfg FulfillmentConfig)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg FulfillmentConfig) {
				assert.Equal(t, "DiningQueue", cfg.Queue.Name)
				assert.Equal(t, "America/New_York", cfg.Dialog.TimeZone)
				loc, err := cfg.Dialog.Location()
				require.NoError(t, err)
				assert.Equal(t, "America/New_York", loc.String())
			},
		},
		{
			name:    "custom queue",
			envVars: map[string]string{"QUEUE_NAME": "StagingQueue", "TIME_ZONE": "UTC"},
			check: func(t *testing.T, cfg FulfillmentConfig) {
				assert.Equal(t, "StagingQueue", cfg.Queue.Name)
				assert.Equal(t, "UTC", cfg.Dialog.TimeZone)
			},
		},
		{
			name:    "unknown time zone",
			envVars: map[string]string{"TIME_ZONE": "Mars/Olympus_Mons"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}
			var cfg FulfillmentConfig
			err := Load(&cfg)
			if tc.wantErr {
				assert.ErrorIs(t, err, pkgconfig.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadNotifierConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setNotifierEnv(t)

		var cfg NotifierConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, 1, cfg.Queue.BatchSize)
		assert.Equal(t, time.Duration(0), cfg.Queue.WaitTime)
		assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
		assert.Equal(t, 5, cfg.Search.Limit)
		assert.Equal(t, "yelp-restaurants", cfg.Restaurants.Table)
		assert.False(t, cfg.Archive.Enabled())
		assert.Equal(t, NotifierModeSchedule, cfg.Mode)
	})

	t.Run("unknown mode", func(t *testing.T) {
		setNotifierEnv(t)
		t.Setenv("NOTIFIER_MODE", "cron")

		var cfg NotifierConfig
		err := Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notifier_mode")
	})

	t.Run("batch size above receive limit", func(t *testing.T) {
		setNotifierEnv(t)
		t.Setenv("BATCH_SIZE", "11")

		var cfg NotifierConfig
		err := Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch_size")
	})

	t.Run("relative search url", func(t *testing.T) {
		setNotifierEnv(t)
		t.Setenv("ES_BASE_URL", "search.example.com")

		var cfg NotifierConfig
		assert.ErrorIs(t, Load(&cfg), pkgconfig.ErrConfiguration)
	})

	t.Run("yaml file does not carry the password", func(t *testing.T) {
		setNotifierEnv(t)
		path := filepath.Join(t.TempDir(), "notifier.yaml")
		require.NoError(t, os.WriteFile(path, []byte("es_index: from-file\narchive_bucket: digests-bucket\n"), 0o600))
		t.Setenv(ConfigFileEnv, path)
		t.Setenv("ES_INDEX", "")

		var cfg NotifierConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, "from-file", cfg.Search.Index)
		assert.Equal(t, "secret", cfg.Search.Password)
		assert.True(t, cfg.Archive.Enabled())
		assert.Equal(t, "digests/", cfg.Archive.Prefix)
	})
}

func TestDevServerConfigViews(t *testing.T) {
	setNotifierEnv(t)
	t.Setenv("BOT_NAME", "DiningConcierge")
	t.Setenv("BOT_ALIAS", "dev")
	t.Setenv("USER_ID", "local")
	t.Setenv("QUEUE_NAME", "LocalQueue")

	var cfg DevServerConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "DiningConcierge", cfg.Relay().Lex.BotName)
	assert.Equal(t, "LocalQueue", cfg.Fulfillment().Queue.Name)
	assert.Equal(t, "LocalQueue", cfg.Notifier().Queue.Name)
	assert.Equal(t, "restaurants", cfg.Notifier().Search.Index)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}
